package messages

// PageShownMsg reports the end of a page change or archive open.
type PageShownMsg struct {
	Err error
}

// CopyDoneMsg reports a clipboard copy.
type CopyDoneMsg struct {
	Page int
	Err  error
}

// ReloadedMsg reports an archive reload, manual or from the watcher.
type ReloadedMsg struct {
	Err error
}

// ThumbsChangedMsg means the thumbnail strip has new content to draw.
type ThumbsChangedMsg struct{}
