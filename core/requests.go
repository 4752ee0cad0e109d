package core

// ResolveOrderRequest describes one button instance. Options carry the
// collaborators and integrator callbacks for that instance.
type ResolveOrderRequest struct {
	Config  Config
	Options []Option
}

type ResolveOrderResult struct {
	OrderID         string
	ButtonSessionID string
	Branch          ResolutionBranch
}

type NormalizeOrderRequest struct {
	Draft    Order
	Merchant MerchantConfig
}
