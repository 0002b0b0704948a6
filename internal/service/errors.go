package service

import "errors"

var (
	// ErrInvalidParticipants is returned when a conversation is created with
	// fewer than two distinct participants.
	ErrInvalidParticipants = errors.New("a conversation needs at least two participants")

	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNotParticipant rejects operations by users who are not part of the
	// conversation, before any state is touched.
	ErrNotParticipant = errors.New("user is not a participant of this conversation")

	ErrEmptyContent   = errors.New("message content is empty")
	ErrContentTooLong = errors.New("message content exceeds the maximum length")

	ErrCareNotFound = errors.New("care session not found")
	ErrNotAllowed   = errors.New("operation not allowed for this user")

	// ErrInvalidCareTransition rejects status changes that skip a step, such
	// as starting a care session that was never accepted.
	ErrInvalidCareTransition = errors.New("care status transition not allowed from the current status")

	ErrPlantNotFound = errors.New("plant not found")

	ErrAdviceNotFound = errors.New("advice not found")

	// ErrNotBotanist rejects advice operations reserved for botanist accounts.
	ErrNotBotanist = errors.New("user is not a botanist")
)
