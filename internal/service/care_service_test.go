package service

import (
	"errors"
	"testing"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
)

func newCareService() (*CareService, *MockCareRepository, *MockPlantRepository, *MockConversationRepository) {
	conversationRepo := NewMockConversationRepository()
	userRepo := NewMockUserRepository()
	careRepo := NewMockCareRepository()
	plantRepo := NewMockPlantRepository()
	conversations := NewConversationService(conversationRepo, userRepo, careRepo)
	return NewCareService(careRepo, plantRepo, conversations), careRepo, plantRepo, conversationRepo
}

func seedCare(t *testing.T, svc *CareService, plantRepo *MockPlantRepository, ownerID, caretakerID uint) *models.CareSession {
	t.Helper()
	plant := &models.Plant{OwnerID: ownerID, Name: "Monstera"}
	plantRepo.Create(plant)

	care, err := svc.Create(ownerID, CreateCareInput{
		PlantID:     plant.ID,
		CaretakerID: caretakerID,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	return care
}

func TestCreateCare(t *testing.T) {
	svc, _, plantRepo, _ := newCareService()
	plant := &models.Plant{OwnerID: 1, Name: "Ficus"}
	plantRepo.Create(plant)

	tests := []struct {
		name    string
		ownerID uint
		input   CreateCareInput
		wantErr error
	}{
		{
			name:    "valid request",
			ownerID: 1,
			input:   CreateCareInput{PlantID: plant.ID, CaretakerID: 2},
		},
		{
			name:    "unknown plant",
			ownerID: 1,
			input:   CreateCareInput{PlantID: 99, CaretakerID: 2},
			wantErr: ErrPlantNotFound,
		},
		{
			name:    "not the plant owner",
			ownerID: 3,
			input:   CreateCareInput{PlantID: plant.ID, CaretakerID: 2},
			wantErr: ErrNotAllowed,
		},
		{
			name:    "owner cannot sit their own plant",
			ownerID: 1,
			input:   CreateCareInput{PlantID: plant.ID, CaretakerID: 1},
			wantErr: ErrNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			care, err := svc.Create(tt.ownerID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && care.Status != models.CarePending {
				t.Errorf("status = %s, want pending", care.Status)
			}
		})
	}
}

func TestAcceptCareCreatesConversation(t *testing.T) {
	svc, _, plantRepo, conversationRepo := newCareService()
	care := seedCare(t, svc, plantRepo, 1, 2)

	updated, err := svc.UpdateStatus(care.ID, 2, models.CareAccepted)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.CareAccepted {
		t.Errorf("status = %s, want accepted", updated.Status)
	}
	if updated.ConversationID == nil {
		t.Fatal("no conversation linked after acceptance")
	}

	conversation, err := conversationRepo.FindByID(*updated.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if conversation.Type != models.PlantCareConversation {
		t.Errorf("conversation type = %s, want plant_care", conversation.Type)
	}
	if conversation.RelatedID == nil || *conversation.RelatedID != care.ID {
		t.Errorf("related id = %v, want %d", conversation.RelatedID, care.ID)
	}

	participants, _ := conversationRepo.Participants(conversation.ID)
	if len(participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(participants))
	}
	got := map[uint]bool{}
	for _, p := range participants {
		got[p.UserID] = true
	}
	if !got[1] || !got[2] {
		t.Errorf("participants = %v, want owner 1 and caretaker 2", got)
	}

	messages, _ := conversationRepo.ListMessages(conversation.ID, 0, 10)
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want exactly one announcement", len(messages))
	}
	if !messages[0].IsSystem() {
		t.Error("announcement should have no sender")
	}
	if messages[0].Content != CareAcceptedMessage {
		t.Errorf("announcement content = %q", messages[0].Content)
	}
}

func TestAcceptCareIsIdempotent(t *testing.T) {
	svc, _, plantRepo, conversationRepo := newCareService()
	care := seedCare(t, svc, plantRepo, 1, 2)

	first, err := svc.UpdateStatus(care.ID, 2, models.CareAccepted)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UpdateStatus(care.ID, 2, models.CareAccepted)
	if err != nil {
		t.Fatal(err)
	}

	if *first.ConversationID != *second.ConversationID {
		t.Errorf("conversation changed across accepts: %d then %d",
			*first.ConversationID, *second.ConversationID)
	}
	if len(conversationRepo.conversations) != 1 {
		t.Errorf("conversations = %d, want 1", len(conversationRepo.conversations))
	}
	messages, _ := conversationRepo.ListMessages(*first.ConversationID, 0, 10)
	if len(messages) != 1 {
		t.Errorf("announcements = %d, want 1", len(messages))
	}
}

func TestUpdateStatusActorRules(t *testing.T) {
	// Accepting and refusing belong to the caretaker, cancelling to the
	// owner; strangers get nothing.
	tests := []struct {
		name    string
		actorID uint
		status  models.CareStatus
		wantErr error
	}{
		{"caretaker accepts", 2, models.CareAccepted, nil},
		{"owner cannot accept own request", 1, models.CareAccepted, ErrNotAllowed},
		{"stranger cannot accept", 9, models.CareAccepted, ErrNotAllowed},
		{"caretaker refuses", 2, models.CareRefused, nil},
		{"owner cannot refuse", 1, models.CareRefused, ErrNotAllowed},
		{"owner cancels", 1, models.CareCancelled, nil},
		{"caretaker cannot cancel", 2, models.CareCancelled, ErrNotAllowed},
		{"stranger cannot cancel", 9, models.CareCancelled, ErrNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, plantRepo, _ := newCareService()
			care := seedCare(t, svc, plantRepo, 1, 2)

			updated, err := svc.UpdateStatus(care.ID, tt.actorID, tt.status)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateStatus() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && updated.Status != tt.status {
				t.Errorf("status = %s, want %s", updated.Status, tt.status)
			}
		})
	}
}

func TestInProgressRequiresAcceptance(t *testing.T) {
	svc, _, plantRepo, _ := newCareService()
	care := seedCare(t, svc, plantRepo, 1, 2)

	if _, err := svc.UpdateStatus(care.ID, 2, models.CareInProgress); !errors.Is(err, ErrInvalidCareTransition) {
		t.Fatalf("error = %v, want ErrInvalidCareTransition", err)
	}

	if _, err := svc.UpdateStatus(care.ID, 2, models.CareAccepted); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.UpdateStatus(care.ID, 2, models.CareInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.CareInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
}

func TestUpdateStatusUnknownCare(t *testing.T) {
	svc, _, _, _ := newCareService()
	if _, err := svc.UpdateStatus(42, 2, models.CareAccepted); !errors.Is(err, ErrCareNotFound) {
		t.Errorf("error = %v, want ErrCareNotFound", err)
	}
}

func TestRefuseCareOpensNoConversation(t *testing.T) {
	svc, _, plantRepo, conversationRepo := newCareService()
	care := seedCare(t, svc, plantRepo, 1, 2)

	updated, err := svc.UpdateStatus(care.ID, 2, models.CareRefused)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ConversationID != nil {
		t.Error("refusal must not open a conversation")
	}
	if len(conversationRepo.conversations) != 0 {
		t.Errorf("conversations = %d, want 0", len(conversationRepo.conversations))
	}
}

func TestAttachPhoto(t *testing.T) {
	svc, _, plantRepo, _ := newCareService()
	care := seedCare(t, svc, plantRepo, 1, 2)

	// Either party may document the plant's condition.
	updated, err := svc.AttachPhoto(care.ID, 2, "cares/start.jpg", false)
	if err != nil {
		t.Fatal(err)
	}
	if updated.StartPhotoURL != "cares/start.jpg" {
		t.Errorf("start photo = %q", updated.StartPhotoURL)
	}

	updated, err = svc.AttachPhoto(care.ID, 1, "cares/end.jpg", true)
	if err != nil {
		t.Fatal(err)
	}
	if updated.EndPhotoURL != "cares/end.jpg" {
		t.Errorf("end photo = %q", updated.EndPhotoURL)
	}

	if _, err := svc.AttachPhoto(care.ID, 9, "cares/x.jpg", false); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("stranger error = %v, want ErrNotAllowed", err)
	}
}
