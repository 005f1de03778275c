package chatmessage

import (
	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

const (
	errMessageNil     = "message cannot be nil"
	errMessageIDEmpty = "message ID cannot be empty"
)

func validateCreate(input CreateInput) error {
	if input.Message == nil {
		return errors.InvalidArgument(errMessageNil)
	}
	if input.Message.ID == "" {
		return errors.InvalidArgument(errMessageIDEmpty)
	}
	return nil
}

func validateFlag(messageID, scope, key string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("MessageID", messageID, vb)
	errors.ValidateRequired("Scope", scope, vb)
	errors.ValidateRequired("Key", key, vb)
	return vb.Build()
}

// flagField is how a flag is addressed inside one message
func flagField(scope, key string) string {
	return scope + "." + key
}

func cloneMessage(m *ChatMessage) *ChatMessage {
	c := *m
	return &c
}
