package vanilla

// ChromeClass is a typed identifier for the page chrome CSS classes.
type ChromeClass string

const (
	ClassPage    ChromeClass = "formflow-page"
	ClassHeader  ChromeClass = "formflow-header"
	ClassForm    ChromeClass = "formflow-form"
	ClassSteps   ChromeClass = "formflow-steps"
	ClassField   ChromeClass = "formflow-field"
	ClassActions ChromeClass = "formflow-actions"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"page":    string(ClassPage),
		"header":  string(ClassHeader),
		"form":    string(ClassForm),
		"steps":   string(ClassSteps),
		"field":   string(ClassField),
		"actions": string(ClassActions),
	}
}
