//go:build darwin

package tray

import (
	"time"

	"fyne.io/systray"
	"golang.design/x/hotkey/mainthread"

	"keyhush/login"
)

var (
	mBlock  *systray.MenuItem
	mCancel *systray.MenuItem
	ticker  *time.Ticker
)

func Init() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip("keyhush")

	mu.Lock()
	w := window
	mu.Unlock()

	mBlock = systray.AddMenuItem(blockTitle(w), "Swallow the configured shortcuts")
	mCancel = systray.AddMenuItem("Stop Blocking", "Restore shortcuts now")
	mCancel.Disable()
	systray.AddSeparator()
	mLogin := systray.AddMenuItemCheckbox("Start at Login", "Launch keyhush when you log in", login.Enabled())
	mQuit := systray.AddMenuItem("Quit", "Quit keyhush")

	go func() {
		for {
			select {
			case <-mBlock.ClickedCh:
				fire(&blockFn)
			case <-mCancel.ClickedCh:
				fire(&cancelFn)
			case <-mLogin.ClickedCh:
				toggleLogin(mLogin)
			case <-mQuit.ClickedCh:
				Quit()
			case <-quitCh:
				return
			}
		}
	}()
}

func toggleLogin(item *systray.MenuItem) {
	var err error
	if item.Checked() {
		err = login.Disable()
	} else {
		err = login.Enable()
	}
	if err != nil {
		SetError(err.Error())
		return
	}
	if login.Enabled() {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func updateBlocking(on bool) {
	if mBlock == nil {
		return
	}
	if on {
		systray.SetIcon(iconBlockHi)
		mBlock.Disable()
		mCancel.Enable()
		startCountdown()
		return
	}
	stopCountdown()
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTitle("")
	mBlock.Enable()
	mCancel.Disable()
}

func startCountdown() {
	stopCountdown()
	t := time.NewTicker(250 * time.Millisecond)
	ticker = t
	systray.SetTitle(countdown(time.Now()))
	go func() {
		for now := range t.C {
			text := countdown(now)
			if text == "" {
				return
			}
			systray.SetTitle(text)
		}
	}()
}

func stopCountdown() {
	if ticker != nil {
		ticker.Stop()
		ticker = nil
	}
}

func updateBlockTitle(title string) {
	if mBlock != nil {
		mBlock.SetTitle(title)
	}
}

func updateTooltip(msg string) {
	if mBlock != nil {
		systray.SetTooltip(msg)
	}
}

func onExit() {
	Quit()
}
