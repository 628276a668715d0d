// Package shell implements the desktop shell state: windows with a single
// closed/open/minimized state each, an explicit front-to-back stack, the
// start menu, the explorer folder galleries, auto-dismissing popups and the
// taskbar clock.
//
// All presentation (marker classes, inline display, z-index, aria-hidden)
// is derived from a Snapshot; the shell never stores it. Events reach the
// shell through a single Dispatcher that routes resolved click targets and
// key presses to per-feature handlers.
package shell
