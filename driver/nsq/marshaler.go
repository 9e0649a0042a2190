package nsq

import (
	"bytes"
	"encoding/gob"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nsqio/go-nsq"
	"github.com/pkg/errors"
)

type Marshaler interface {
	Marshal(topic string, msg *message.Message) ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(m *nsq.Message) (*message.Message, error)
}

type envelope struct {
	UUID     string
	Metadata message.Metadata
	Payload  message.Payload
}

// GobMarshaler carries the whole watermill message, metadata included,
// through nsq bodies.
type GobMarshaler struct{}

func (GobMarshaler) Marshal(topic string, msg *message.Message) ([]byte, error) {
	buf := new(bytes.Buffer)

	encoder := gob.NewEncoder(buf)
	if err := encoder.Encode(envelope{
		UUID:     msg.UUID,
		Metadata: msg.Metadata,
		Payload:  msg.Payload,
	}); err != nil {
		return nil, errors.Wrap(err, "cannot encode message")
	}

	return buf.Bytes(), nil
}

func (GobMarshaler) Unmarshal(m *nsq.Message) (*message.Message, error) {
	var decoded envelope

	decoder := gob.NewDecoder(bytes.NewReader(m.Body))
	if err := decoder.Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "cannot decode message")
	}

	msg := message.NewMessage(decoded.UUID, decoded.Payload)
	msg.Metadata = decoded.Metadata
	return msg, nil
}
