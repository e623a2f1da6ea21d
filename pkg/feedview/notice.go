package feedview

type NoticeLevel int

const (
	NoticeSuccess NoticeLevel = iota
	NoticeError
	// NoticePrompt asks the viewer to do something first, like signing in.
	NoticePrompt
)

const genericFailure = "Something went wrong"

type Notice struct {
	Level   NoticeLevel
	Message string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return discardNotifier{}
	}
	return n
}
