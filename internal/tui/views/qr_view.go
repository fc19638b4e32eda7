package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/qrtext"
	"github.com/matheus3301/waha-client/internal/tui/ui"
)

// QRView is the pairing page.
type QRView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewQRView creates the pairing page.
func NewQRView(theme *ui.Theme) *QRView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Link device ")
	tv.SetTitleColor(theme.TitleColor)

	return &QRView{
		TextView: tv,
		theme:    theme,
	}
}

// ShowQR renders qr as half-block art.
func (qv *QRView) ShowQR(qr model.QRImage) {
	qv.Clear()
	art, err := qrtext.Render(qr, "")
	if err != nil {
		_, _ = fmt.Fprintf(qv, "\n\n[%s]QR could not be rendered: %s[-]", ui.Tag(qv.theme.FlashErrColor), tview.Escape(err.Error()))
		return
	}
	_, _ = fmt.Fprintf(qv, "\nOpen WhatsApp > Linked devices and scan:\n\n%s\n[::d]Waiting for the phone... press g for a new code", art)
}

// ShowMessage replaces the QR with a line of text.
func (qv *QRView) ShowMessage(msg string) {
	qv.Clear()
	_, _ = fmt.Fprintf(qv, "\n\n%s", tview.Escape(msg))
}
