package app

import (
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/dispatch"
	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/view"
)

// Handlers returns the callbacks the push channel dispatches to.
func (a *App) Handlers() dispatch.Handlers {
	return dispatch.Handlers{
		OnOpen: func() {
			a.logger.Info("push channel open")
		},
		OnClose: func() {
			a.logger.Info("push channel closed")
		},
		OnError: func(err error) {
			a.logger.Warn("push channel error", zap.Error(err))
		},
		OnReady:       a.onReady,
		OnAuthFailure: a.onAuthFailure,
		OnQR:          a.onQR,
		OnMessage: func(m model.Message) {
			a.convs.MergeMessage(a.baseContext(), m)
		},
		OnMessageAck: func(ev model.AckEvent) {
			if !a.convs.ApplyAck(ev) {
				a.logger.Debug("ack for message not on screen", zap.String("msg_id", ev.MessageID))
			}
		},
		OnChatUpdate: func(c model.Chat) {
			a.logger.Debug("chat updated", zap.String("chat_id", c.ID))
			a.refresh(a.baseContext())
		},
	}
}

func (a *App) onReady() {
	ctx := a.baseContext()
	info, err := a.tracker.CheckStatus(ctx)
	if err != nil {
		a.logger.Warn("check status on ready", zap.Error(err))
	}
	a.presenter.ShowSessionInfo(info)
	a.presenter.ShowLoggedIn()
	a.presenter.Notify("WhatsApp connected", view.LevelSuccess)
	a.refresh(ctx)
}

func (a *App) onAuthFailure() {
	a.convs.Clear()
	a.presenter.ShowLoggedOut()
	a.presenter.Notify("Authentication failed; generate a new QR code", view.LevelError)
}

func (a *App) onQR(code string) {
	a.presenter.ShowQRImage(model.QRImage{Code: code})
	a.presenter.Notify("Scan the QR code with WhatsApp", view.LevelInfo)
}
