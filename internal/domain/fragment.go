package domain

// Fragment is one incremental piece of generated text. Fragments of a stream
// carry strictly increasing Seq values; the terminal fragment has no payload.
type Fragment struct {
	Payload  string
	Seq      int
	Terminal bool
}
