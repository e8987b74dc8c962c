package domain

// Channel is one media kind whose encode/decode ability the engine reports.
type Channel string

const (
	ChannelAudio Channel = "audio"
	ChannelVideo Channel = "video"
	ChannelShare Channel = "share"
)

// Direction distinguishes local sending (encode) from receiving (decode).
type Direction string

const (
	DirectionEncode Direction = "encode"
	DirectionDecode Direction = "decode"
)

// CodecState holds the two flags of a single channel.
type CodecState struct {
	Encode bool `json:"encode"`
	Decode bool `json:"decode"`
}

// Capabilities is an immutable snapshot of what is currently active.
// The zero value is the default all-false shape.
type Capabilities struct {
	Audio CodecState `json:"audio"`
	Video CodecState `json:"video"`
	Share CodecState `json:"share"`
}

// VideoDecodeReady reports whether incoming video can be decoded right now.
func (c Capabilities) VideoDecodeReady() bool { return c.Video.Decode }
