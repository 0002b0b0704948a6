package service

import (
	"sort"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"gorm.io/gorm"
)

// MockUserRepository is an in-memory implementation of UserRepositoryInterface
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByIDs(ids []uint) ([]models.User, error) {
	var result []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// MockConversationRepository is an in-memory implementation of
// ConversationRepositoryInterface with the same transactional semantics as
// the real one: message creation bumps the conversation's UpdatedAt, and
// mark-read flips flags and advances the cursor together.
type MockConversationRepository struct {
	conversations map[uint]*models.Conversation
	participants  map[uint][]*models.ConversationParticipant
	messages      map[uint]*models.Message
	nextConvID    uint
	nextMsgID     uint
	failCreateMsg error
}

func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[uint]*models.Conversation),
		participants:  make(map[uint][]*models.ConversationParticipant),
		messages:      make(map[uint]*models.Message),
		nextConvID:    1,
		nextMsgID:     1,
	}
}

func (m *MockConversationRepository) CreateConversation(conversation *models.Conversation, participantIDs []uint) error {
	if conversation.ID == 0 {
		conversation.ID = m.nextConvID
		m.nextConvID++
	}
	now := time.Now().UTC()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	m.conversations[conversation.ID] = conversation
	for _, userID := range participantIDs {
		m.participants[conversation.ID] = append(m.participants[conversation.ID],
			&models.ConversationParticipant{ConversationID: conversation.ID, UserID: userID})
	}
	return nil
}

func (m *MockConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	if c, ok := m.conversations[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) ListForUser(userID uint, skip, limit int) ([]models.Conversation, error) {
	var result []models.Conversation
	for id, c := range m.conversations {
		for _, p := range m.participants[id] {
			if p.UserID == userID {
				result = append(result, *c)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockConversationRepository) CreateMessage(message *models.Message) error {
	if m.failCreateMsg != nil {
		return m.failCreateMsg
	}
	conversation, ok := m.conversations[message.ConversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if message.ID == 0 {
		message.ID = m.nextMsgID
		m.nextMsgID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	m.messages[message.ID] = message
	conversation.UpdatedAt = message.CreatedAt
	return nil
}

func (m *MockConversationRepository) ListMessages(conversationID uint, skip, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockConversationRepository) LastMessage(conversationID uint) (*models.Message, error) {
	messages, err := m.ListMessages(conversationID, 0, 1)
	if err != nil || len(messages) == 0 {
		return nil, err
	}
	return &messages[0], nil
}

func (m *MockConversationRepository) MarkConversationRead(conversationID, userID uint) error {
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && !msg.IsRead {
			msg.IsRead = true
		}
	}
	now := time.Now().UTC()
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			p.LastReadAt = &now
		}
	}
	return nil
}

func (m *MockConversationRepository) Participants(conversationID uint) ([]models.ConversationParticipant, error) {
	var result []models.ConversationParticipant
	for _, p := range m.participants[conversationID] {
		result = append(result, *p)
	}
	return result, nil
}

func (m *MockConversationRepository) IsParticipant(conversationID, userID uint) (bool, error) {
	for _, p := range m.participants[conversationID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockConversationRepository) UnreadCounts(userID uint) ([]models.UnreadCount, error) {
	counts := make(map[uint]int64)
	for _, msg := range m.messages {
		if m.isUnreadFor(msg, userID) {
			counts[msg.ConversationID]++
		}
	}
	result := make([]models.UnreadCount, 0, len(counts))
	for conversationID, count := range counts {
		result = append(result, models.UnreadCount{ConversationID: conversationID, UnreadCount: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ConversationID < result[j].ConversationID
	})
	return result, nil
}

func (m *MockConversationRepository) UnreadCountForConversation(conversationID, userID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && m.isUnreadFor(msg, userID) {
			count++
		}
	}
	return count, nil
}

// isUnreadFor mirrors the production query: not from the user, globally
// unread, and newer than the user's read cursor.
func (m *MockConversationRepository) isUnreadFor(msg *models.Message, userID uint) bool {
	if msg.SenderID != nil && *msg.SenderID == userID {
		return false
	}
	if msg.IsRead {
		return false
	}
	var participant *models.ConversationParticipant
	for _, p := range m.participants[msg.ConversationID] {
		if p.UserID == userID {
			participant = p
			break
		}
	}
	if participant == nil {
		return false
	}
	return participant.LastReadAt == nil || msg.CreatedAt.After(*participant.LastReadAt)
}

// MockPresenceRepository is an in-memory implementation of
// PresenceRepositoryInterface
type MockPresenceRepository struct {
	presences map[uint]*models.UserPresence
	typing    map[uint][]*models.UserTypingStatus
}

func NewMockPresenceRepository() *MockPresenceRepository {
	return &MockPresenceRepository{
		presences: make(map[uint]*models.UserPresence),
		typing:    make(map[uint][]*models.UserTypingStatus),
	}
}

func (m *MockPresenceRepository) SetOnline(userID uint, socketID string) error {
	m.presences[userID] = &models.UserPresence{
		UserID:     userID,
		Status:     models.StatusOnline,
		LastSeenAt: time.Now().UTC(),
		SocketID:   socketID,
	}
	return nil
}

func (m *MockPresenceRepository) SetOffline(userID uint) error {
	p, ok := m.presences[userID]
	if !ok {
		p = &models.UserPresence{UserID: userID}
		m.presences[userID] = p
	}
	p.Status = models.StatusOffline
	p.LastSeenAt = time.Now().UTC()
	return nil
}

func (m *MockPresenceRepository) GetPresence(userID uint) (*models.UserPresence, error) {
	if p, ok := m.presences[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPresenceRepository) UpsertTyping(userID, conversationID uint, isTyping bool) error {
	for _, t := range m.typing[conversationID] {
		if t.UserID == userID {
			t.IsTyping = isTyping
			t.LastTypedAt = time.Now().UTC()
			return nil
		}
	}
	m.typing[conversationID] = append(m.typing[conversationID], &models.UserTypingStatus{
		UserID:         userID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
		LastTypedAt:    time.Now().UTC(),
	})
	return nil
}

func (m *MockPresenceRepository) TypingForConversation(conversationID uint) ([]models.UserTypingStatus, error) {
	var result []models.UserTypingStatus
	for _, t := range m.typing[conversationID] {
		result = append(result, *t)
	}
	return result, nil
}

// setTypingAt backdates a typing row for staleness tests.
func (m *MockPresenceRepository) setTypingAt(userID, conversationID uint, isTyping bool, at time.Time) {
	m.typing[conversationID] = append(m.typing[conversationID], &models.UserTypingStatus{
		UserID:         userID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
		LastTypedAt:    at,
	})
}

// MockCareRepository is an in-memory implementation of CareRepositoryInterface
type MockCareRepository struct {
	cares  map[uint]*models.CareSession
	nextID uint
}

func NewMockCareRepository() *MockCareRepository {
	return &MockCareRepository{cares: make(map[uint]*models.CareSession), nextID: 1}
}

func (m *MockCareRepository) Create(care *models.CareSession) error {
	if care.ID == 0 {
		care.ID = m.nextID
		m.nextID++
	}
	m.cares[care.ID] = care
	return nil
}

func (m *MockCareRepository) FindByID(id uint) (*models.CareSession, error) {
	if c, ok := m.cares[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockCareRepository) List(filter repository.CareFilter) ([]models.CareSession, error) {
	var result []models.CareSession
	for _, c := range m.cares {
		if filter.OwnerID != nil && c.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.CaretakerID != nil && c.CaretakerID != *filter.CaretakerID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockCareRepository) Update(care *models.CareSession) error {
	if _, ok := m.cares[care.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.cares[care.ID] = care
	return nil
}

// MockAdviceRepository is an in-memory implementation of AdviceRepositoryInterface
type MockAdviceRepository struct {
	advices map[uint]*models.Advice
	nextID  uint
}

func NewMockAdviceRepository() *MockAdviceRepository {
	return &MockAdviceRepository{advices: make(map[uint]*models.Advice), nextID: 1}
}

func (m *MockAdviceRepository) Create(advice *models.Advice) error {
	if advice.ID == 0 {
		advice.ID = m.nextID
		m.nextID++
	}
	advice.CreatedAt = time.Now().UTC()
	m.advices[advice.ID] = advice
	return nil
}

func (m *MockAdviceRepository) FindByID(id uint) (*models.Advice, error) {
	if a, ok := m.advices[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAdviceRepository) ListByPlant(plantID uint, skip, limit int) ([]models.Advice, error) {
	return m.list(func(a *models.Advice) bool { return a.PlantID == plantID }, skip, limit), nil
}

func (m *MockAdviceRepository) ListByBotanist(botanistID uint, skip, limit int) ([]models.Advice, error) {
	return m.list(func(a *models.Advice) bool { return a.BotanistID == botanistID }, skip, limit), nil
}

func (m *MockAdviceRepository) list(match func(*models.Advice) bool, skip, limit int) []models.Advice {
	var result []models.Advice
	for _, a := range m.advices {
		if match(a) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if skip >= len(result) {
		return nil
	}
	result = result[skip:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (m *MockAdviceRepository) Update(advice *models.Advice) error {
	if _, ok := m.advices[advice.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.advices[advice.ID] = advice
	return nil
}

func (m *MockAdviceRepository) Delete(id uint) error {
	delete(m.advices, id)
	return nil
}

// MockPlantRepository is an in-memory implementation of PlantRepositoryInterface
type MockPlantRepository struct {
	plants map[uint]*models.Plant
	nextID uint
}

func NewMockPlantRepository() *MockPlantRepository {
	return &MockPlantRepository{plants: make(map[uint]*models.Plant), nextID: 1}
}

func (m *MockPlantRepository) Create(plant *models.Plant) error {
	if plant.ID == 0 {
		plant.ID = m.nextID
		m.nextID++
	}
	m.plants[plant.ID] = plant
	return nil
}

func (m *MockPlantRepository) FindByID(id uint) (*models.Plant, error) {
	if p, ok := m.plants[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPlantRepository) ListByOwner(ownerID uint, skip, limit int) ([]models.Plant, error) {
	var result []models.Plant
	for _, p := range m.plants {
		if p.OwnerID == ownerID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockPlantRepository) Update(plant *models.Plant) error {
	if _, ok := m.plants[plant.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.plants[plant.ID] = plant
	return nil
}
