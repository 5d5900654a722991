package gate

// Action describes the kind of operation a caller wants to perform.
type Action string

const (
	ActionView    Action = "view"
	ActionList    Action = "list"
	ActionCreate  Action = "create"
	ActionDelete  Action = "delete"
	ActionOffer   Action = "offer"
	ActionClose   Action = "close"
	ActionQuote   Action = "quote"
	ActionBargain Action = "bargain"
	ActionToggle  Action = "toggle"
)
