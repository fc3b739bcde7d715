package keymap

// Contexts a binding can belong to.
const (
	ContextGlobal  = "global"
	ContextList    = "list"
	ContextConfirm = "confirm"
	ContextEditor  = "editor"
	ContextPrompt  = "prompt"
)

// Commands.
const (
	CmdQuit           = "quit"
	CmdCursorDown     = "cursor-down"
	CmdCursorUp       = "cursor-up"
	CmdCursorTop      = "cursor-top"
	CmdCursorBottom   = "cursor-bottom"
	CmdNew            = "new-note"
	CmdEdit           = "edit-note"
	CmdPin            = "toggle-pin"
	CmdArchive        = "toggle-archive"
	CmdTrash          = "trash"
	CmdRestore        = "restore"
	CmdDeleteForever  = "delete-forever"
	CmdEmptyTrash     = "empty-trash"
	CmdUndo           = "undo"
	CmdSelect         = "toggle-select"
	CmdClearSelection = "clear-selection"
	CmdColor          = "cycle-color"
	CmdBackground     = "cycle-background"
	CmdLabel          = "toggle-label"
	CmdAddImage       = "add-image"
	CmdRemoveImage    = "remove-image"
	CmdMoveUp         = "move-up"
	CmdMoveDown       = "move-down"
	CmdYank           = "yank"
	CmdViewNotes      = "view-notes"
	CmdViewArchive    = "view-archive"
	CmdViewTrash      = "view-trash"
	CmdTogglePreview  = "toggle-preview"
	CmdToggleFooter   = "toggle-footer"
	CmdHelp           = "toggle-help"
	CmdConfirm        = "confirm"
	CmdCancel         = "cancel"
	CmdSwitchButton   = "switch-button"
	CmdSave           = "save"
	CmdNextField      = "next-field"
)

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal},
		{Key: "ctrl+z", Command: CmdUndo, Context: ContextGlobal, Help: "undo"},

		// Note list
		{Key: "q", Command: CmdQuit, Context: ContextList, Help: "quit"},
		{Key: "j", Command: CmdCursorDown, Context: ContextList},
		{Key: "down", Command: CmdCursorDown, Context: ContextList},
		{Key: "k", Command: CmdCursorUp, Context: ContextList},
		{Key: "up", Command: CmdCursorUp, Context: ContextList},
		{Key: "g", Command: CmdCursorTop, Context: ContextList},
		{Key: "G", Command: CmdCursorBottom, Context: ContextList},
		{Key: "n", Command: CmdNew, Context: ContextList, Help: "new"},
		{Key: "enter", Command: CmdEdit, Context: ContextList, Help: "edit"},
		{Key: "e", Command: CmdEdit, Context: ContextList},
		{Key: "p", Command: CmdPin, Context: ContextList, Help: "pin"},
		{Key: "a", Command: CmdArchive, Context: ContextList, Help: "archive"},
		{Key: "d", Command: CmdTrash, Context: ContextList, Help: "trash"},
		{Key: "R", Command: CmdRestore, Context: ContextList},
		{Key: "D", Command: CmdDeleteForever, Context: ContextList},
		{Key: "E", Command: CmdEmptyTrash, Context: ContextList},
		{Key: "u", Command: CmdUndo, Context: ContextList},
		{Key: " ", Command: CmdSelect, Context: ContextList, Help: "select"},
		{Key: "esc", Command: CmdClearSelection, Context: ContextList},
		{Key: "c", Command: CmdColor, Context: ContextList, Help: "color"},
		{Key: "b", Command: CmdBackground, Context: ContextList},
		{Key: "l", Command: CmdLabel, Context: ContextList, Help: "label"},
		{Key: "i", Command: CmdAddImage, Context: ContextList},
		{Key: "I", Command: CmdRemoveImage, Context: ContextList},
		{Key: "K", Command: CmdMoveUp, Context: ContextList},
		{Key: "J", Command: CmdMoveDown, Context: ContextList},
		{Key: "y", Command: CmdYank, Context: ContextList},
		{Key: "1", Command: CmdViewNotes, Context: ContextList},
		{Key: "2", Command: CmdViewArchive, Context: ContextList},
		{Key: "3", Command: CmdViewTrash, Context: ContextList},
		{Key: "v", Command: CmdTogglePreview, Context: ContextList},
		{Key: "ctrl+h", Command: CmdToggleFooter, Context: ContextList},
		{Key: "?", Command: CmdHelp, Context: ContextList, Help: "help"},

		// Confirm dialog
		{Key: "enter", Command: CmdConfirm, Context: ContextConfirm},
		{Key: "y", Command: CmdConfirm, Context: ContextConfirm},
		{Key: "esc", Command: CmdCancel, Context: ContextConfirm},
		{Key: "n", Command: CmdCancel, Context: ContextConfirm},
		{Key: "tab", Command: CmdSwitchButton, Context: ContextConfirm},
		{Key: "left", Command: CmdSwitchButton, Context: ContextConfirm},
		{Key: "right", Command: CmdSwitchButton, Context: ContextConfirm},

		// Note editor
		{Key: "ctrl+s", Command: CmdSave, Context: ContextEditor, Help: "save"},
		{Key: "esc", Command: CmdCancel, Context: ContextEditor, Help: "cancel"},
		{Key: "tab", Command: CmdNextField, Context: ContextEditor},

		// Single-line prompt
		{Key: "enter", Command: CmdConfirm, Context: ContextPrompt},
		{Key: "esc", Command: CmdCancel, Context: ContextPrompt},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}
