package avplayer

// Delegate receives lifecycle notifications from the player. Each hook
// carries the opaque reference token given at construction so the host
// can route the notification.
//
// Hooks are invoked on the player's owner goroutine and are one-way:
// the player neither waits on nor inspects their outcome. They must not
// block.
//
// Buffering notifications are edge-triggered: OnWillBuffer and
// OnDidBuffer strictly alternate. OnFinished fires on every
// end-of-media, including each iteration while looping.
type Delegate interface {
	OnPrepared(ref any)
	OnFinished(ref any)
	OnWillBuffer(ref any)
	OnDidBuffer(ref any)
	OnError(ref any, message string)
}
