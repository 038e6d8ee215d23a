package app

// Popover is a modal shown over the table. The set of popovers is closed:
// ErrorPopover, SettingsPopover and AboutPopover.
type Popover interface {
	popover()
}

// ErrorPopover shows a failed operation.
type ErrorPopover struct {
	Message string
}

// SettingsPopover shows the effective settings.
type SettingsPopover struct {
	Settings []Setting
}

// Setting is one labelled value in the settings popover.
type Setting struct {
	Name  string
	Value string
}

// AboutPopover shows the program name and version.
type AboutPopover struct {
	Name    string
	Version string
}

func (ErrorPopover) popover()    {}
func (SettingsPopover) popover() {}
func (AboutPopover) popover()    {}
