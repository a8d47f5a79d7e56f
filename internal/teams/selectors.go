package teams

import "github.com/dknys/teams_agent/internal/locate"

// Selector catalogs for the Teams web client. These are configuration
// data, not logic: the markup is not ours and changes without notice, so
// every target carries an ordered fallback chain: stable test attribute
// first, accessible label next, visible text last.

// JoinButtonSelectors target the "Join" button on a channel or calendar
// meeting banner.
var JoinButtonSelectors = locate.SelectorSet{
	locate.TestID("channel-ongoing-meeting-banner-join-button"),
	locate.TestID("calendar-join-button"),
	locate.LabelContains("Join meeting"),
	locate.LabelContains("Join now from meeting details"),
	locate.TextEquals("Join"),
	locate.CSS("button[data-inp='join-button']"),
}

// JoinNowSelectors target the confirmation button on the pre-join
// (device check) screen, which may open in a new window.
var JoinNowSelectors = locate.SelectorSet{
	locate.TestID("prejoin-join-button"),
	locate.LabelContains("Join now"),
	locate.TextEquals("Join now"),
}

// TeamNameSelectors target the elements carrying team display names in
// the sidebar.
var TeamNameSelectors = locate.SelectorSet{
	locate.TestID("team-name-text"),
	locate.CSS("[data-tid^='team-'] .name-channel-type"),
	locate.CSS("[role='treeitem'][aria-label]"),
}

// MuteMicSelectors and CameraOffSelectors cover the pre-join device
// toggles. Both are best effort.
var MuteMicSelectors = locate.SelectorSet{
	locate.TestID("toggle-mute"),
	locate.LabelContains("Mute mic"),
	locate.LabelContains("Turn off mic"),
}

var CameraOffSelectors = locate.SelectorSet{
	locate.TestID("toggle-video"),
	locate.LabelContains("Turn camera off"),
	locate.LabelContains("Turn off camera"),
}

// Microsoft login page selectors (two-step: email, Next, password, Sign
// in, then the "Stay signed in?" prompt).
var (
	LoginEmailSelectors = locate.SelectorSet{
		locate.CSS("input[name='loginfmt']"),
		locate.CSS("input[type='email']"),
	}
	LoginPasswordSelectors = locate.SelectorSet{
		locate.CSS("input[name='passwd']"),
		locate.CSS("input[type='password']"),
	}
	LoginSubmitSelectors = locate.SelectorSet{
		locate.CSS("input[id='idSIButton9']"),
		locate.CSS("button[type='submit']"),
		locate.CSS("input[type='submit']"),
		locate.TextEquals("Next"),
		locate.TextEquals("Sign in"),
	}
	StaySignedInSelectors = locate.SelectorSet{
		locate.CSS("input[id='idSIButton9']"),
		locate.TextEquals("Yes"),
	}
)
