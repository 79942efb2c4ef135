package zmachine

// TextStyle is the bitmask passed to set_text_style (spec.md S4.5).
type TextStyle uint8

const (
	StyleRoman        TextStyle = 0
	StyleReverseVideo TextStyle = 1 << 0
	StyleBold         TextStyle = 1 << 1
	StyleItalic       TextStyle = 1 << 2
	StyleFixedPitch   TextStyle = 1 << 3
)

// InputCode is either a plain ZSCII character or one of the special input
// codes (cursor keys, function keys, mouse clicks) that read/read_char can
// return, per spec.md S3 "ZSCII".
type InputCode uint16

const (
	InputDelete    InputCode = 8
	InputNewline   InputCode = 13
	InputEscape    InputCode = 27
	InputCursorUp  InputCode = 129
	InputCursorDn  InputCode = 130
	InputCursorL   InputCode = 131
	InputCursorR   InputCode = 132
	InputF1        InputCode = 133
	InputF12       InputCode = 144
	InputKeypad0   InputCode = 145
	InputKeypad9   InputCode = 154
	InputMouseSingleClick InputCode = 254
	InputMouseDoubleClick InputCode = 253
)

// StatusBar is the v1-3 status line content, refreshed before every read.
type StatusBar struct {
	PlaceName   string
	Score       int
	Moves       int
	IsTimeBased bool
}

// Interface is the boundary between the interpreter core and whatever
// front end is presenting it to a player (spec.md S6 "Interface"). The
// core blocks on ReadLine/ReadChar and otherwise only ever writes through
// it - there is no polling.
type Interface interface {
	Print(text string)
	PrintChar(r rune)
	Clear()
	Done()
	Quit()
	SetTextStyle(style TextStyle)
	ReadLine(terminators []uint8) (text string, terminator InputCode, err error)
	ReadChar() (InputCode, error)

	SplitWindow(lines int)
	SetActiveWindow(lower bool)
	EraseWindow(which int)
	EraseLine()
	SetCursor(line, col int)
	UpdateStatusBar(bar StatusBar)
	SoundEffect(number, effect, volume, repeats int)
}
