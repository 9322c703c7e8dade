package components

// Built-in component names.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
)
