package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/matheus3301/waha-client/internal/view"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableHeaderFg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	MenuKeyColor      tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	OwnMessageColor   tcell.Color
	SenderColor       tcell.Color
	MutedColor        tcell.Color
	FlashInfoColor    tcell.Color
	FlashOKColor      tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color

	// Chat list row colors by status class.
	Classes map[view.Class]tcell.Color
}

// DefaultTheme returns a dark theme in the WhatsApp palette.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorSilver,
		BorderColor:       tcell.ColorSeaGreen,
		BorderFocusColor:  tcell.ColorLightGreen,
		TableHeaderFg:     tcell.ColorWhite,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorMediumSeaGreen,
		MenuKeyColor:      tcell.ColorMediumSeaGreen,
		TitleColor:        tcell.ColorLightGreen,
		CounterColor:      tcell.ColorPapayaWhip,
		OwnMessageColor:   tcell.ColorPaleGreen,
		SenderColor:       tcell.ColorDeepSkyBlue,
		MutedColor:        tcell.ColorGray,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashOKColor:      tcell.ColorLightGreen,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorSeaGreen,
		Classes: map[view.Class]tcell.Color{
			view.ClassActive:      tcell.ColorLightGreen,
			view.ClassGroupUnread: tcell.ColorGold,
			view.ClassGroupRead:   tcell.ColorLightSteelBlue,
			view.ClassUnread:      tcell.ColorWhite,
			view.ClassSent:        tcell.ColorDarkSeaGreen,
			view.ClassReceived:    tcell.ColorSilver,
		},
	}
}

// ClassColor returns the row color for a chat class.
func (t *Theme) ClassColor(c view.Class) tcell.Color {
	if col, ok := t.Classes[c]; ok {
		return col
	}
	return t.FgColor
}

// LevelColor returns the flash color for a notification level.
func (t *Theme) LevelColor(l view.Level) tcell.Color {
	switch l {
	case view.LevelSuccess:
		return t.FlashOKColor
	case view.LevelWarning:
		return t.FlashWarnColor
	case view.LevelError:
		return t.FlashErrColor
	}
	return t.FlashInfoColor
}

// Tag returns c as a tview color tag value, e.g. "#00ff00".
func Tag(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
