package settings

// User-facing keys. These are the only keys the UI writes.
const (
	KeyIndicatorStyle = "indicator_style"
	KeyAppletAutohide = "applet_autohide"
	KeyProvider       = "provider"
	KeyLanguage       = "language"
	KeyAutoPaste      = "autopaste"
	KeyDevice         = "device"
	KeyDialogX        = "dialog_x"
	KeyDialogY        = "dialog_y"
)

// Derived backend keys. Always recomputed from the user-facing keys;
// persisted only for backward compatibility with older config files.
const (
	KeyShowProgressWindow  = "show_progress_window"
	KeyShowIndicatorDialog = "show_indicator_dialog"
	KeyIndicatorMode       = "indicator_mode"
)

const (
	StyleNone        = "none"
	StyleTraditional = "traditional"
	StyleApplet      = "applet"
)

const (
	ModeOff        = "off"
	ModePopup      = "popup"
	ModePersistent = "persistent"
)

func defaultRules() map[string]Rule {
	return map[string]Rule{
		KeyIndicatorStyle: {
			Kind:    KindEnum,
			Choices: []string{StyleNone, StyleTraditional, StyleApplet},
			Default: Enum(StyleApplet),
		},
		KeyAppletAutohide: {Kind: KindBool, Default: Bool(true)},
		KeyProvider: {
			Kind:    KindEnum,
			Choices: []string{"groq", "whisper"},
			Default: Enum("groq"),
		},
		KeyLanguage:  {Kind: KindString, Default: String("en")},
		KeyAutoPaste: {Kind: KindBool, Default: Bool(true)},
		KeyDevice:    {Kind: KindString, Default: String("")},
		KeyDialogX:   {Kind: KindInt, Min: -32768, Max: 32767, Default: Int(0)},
		KeyDialogY:   {Kind: KindInt, Min: -32768, Max: 32767, Default: Int(0)},

		KeyShowProgressWindow:  {Kind: KindBool, Default: Bool(false)},
		KeyShowIndicatorDialog: {Kind: KindBool, Default: Bool(true)},
		KeyIndicatorMode: {
			Kind:    KindEnum,
			Choices: []string{ModeOff, ModePopup, ModePersistent},
			Default: Enum(ModePopup),
		},
	}
}

var backendKeys = []string{
	KeyShowProgressWindow, KeyShowIndicatorDialog, KeyIndicatorMode,
}

func isBackendKey(key string) bool {
	for _, k := range backendKeys {
		if k == key {
			return true
		}
	}
	return false
}
