//go:build !darwin

package tray

func Init() <-chan struct{}   { return quitCh }
func updateBlocking(bool)     {}
func updateBlockTitle(string) {}
func updateTooltip(string)    {}
