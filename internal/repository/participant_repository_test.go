package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

// ParticipantRepositoryTestSuite replays the write interleavings the
// service-level pre-checks cannot see: both requests read a clean state,
// then both try to commit.
type ParticipantRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo ParticipantRepository
}

func (s *ParticipantRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&models.User{}, &models.Item{}, &models.Participant{}))
	s.db = db
	s.repo = NewParticipantRepository(db)
}

func (s *ParticipantRepositoryTestSuite) createEvent(maxParticipants int) *models.Item {
	author := models.User{ID: 1, FirstName: "Aidar", Username: "aidar", Rating: models.DefaultRating, Active: true}
	s.Require().NoError(s.db.FirstOrCreate(&author).Error)

	item := models.Item{
		Type:            models.ItemTypeEvent,
		Title:           "Football",
		Status:          models.ItemStatusOpen,
		AuthorID:        author.ID,
		MaxParticipants: maxParticipants,
		Latitude:        43.238949,
		Longitude:       76.889709,
	}
	s.Require().NoError(s.db.Create(&item).Error)
	return &item
}

func (s *ParticipantRepositoryTestSuite) activeRows(itemID string, userID uint64) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Participant{}).
		Where("item_id = ? AND user_id = ? AND status <> ?", itemID, userID, models.ParticipantStatusLeft).
		Count(&count).Error)
	return count
}

func (s *ParticipantRepositoryTestSuite) participantCount(itemID string) int {
	var item models.Item
	s.Require().NoError(s.db.First(&item, "id = ?", itemID).Error)
	return item.CurrentParticipants
}

// Two direct-approval joins by the same user, both issued after the same
// clean read. The second insert must lose inside the transaction, and the
// counter must reflect a single claimed slot.
func (s *ParticipantRepositoryTestSuite) TestCreateApprovedDuplicateJoinLoses() {
	item := s.createEvent(0)

	first := &models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusApproved}
	second := &models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusApproved}

	s.Require().NoError(s.repo.CreateApproved(first))
	s.Require().ErrorIs(s.repo.CreateApproved(second), ErrAlreadyJoined)

	s.Equal(int64(1), s.activeRows(item.ID, 2))
	s.Equal(1, s.participantCount(item.ID))
}

func (s *ParticipantRepositoryTestSuite) TestCreatePendingDuplicateJoinLoses() {
	item := s.createEvent(0)

	s.Require().NoError(s.repo.Create(&models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusPending}))
	err := s.repo.Create(&models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusPending})
	s.Require().ErrorIs(err, ErrAlreadyJoined)

	s.Equal(int64(1), s.activeRows(item.ID, 2))
}

// A writer that bypasses the repository entirely still cannot commit a
// second active row; the partial unique index rejects it.
func (s *ParticipantRepositoryTestSuite) TestActiveDuplicateRejectedAtCommit() {
	item := s.createEvent(0)
	s.Require().NoError(s.repo.Create(&models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusPending}))

	err := s.db.Create(&models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusApproved}).Error
	s.Require().ErrorIs(err, gorm.ErrDuplicatedKey)
	s.Equal(int64(1), s.activeRows(item.ID, 2))
}

// LEFT rows are history, not membership. They are excluded from the index,
// so leaving and rejoining stays legal.
func (s *ParticipantRepositoryTestSuite) TestRejoinAfterLeaving() {
	item := s.createEvent(0)

	first := &models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusApproved}
	s.Require().NoError(s.repo.CreateApproved(first))
	s.Require().NoError(s.repo.MarkLeft(first.ID))
	s.Equal(0, s.participantCount(item.ID))

	again := &models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusApproved}
	s.Require().NoError(s.repo.CreateApproved(again))

	s.Equal(int64(1), s.activeRows(item.ID, 2))
	s.Equal(1, s.participantCount(item.ID))
}

// Two pending approvals on an event with one free slot. Both read the item
// before either write lands; the guard lives in the UPDATE condition, so
// the second approval matches no row and fails without touching the
// participant.
func (s *ParticipantRepositoryTestSuite) TestApproveCapacityLoserFails() {
	item := s.createEvent(1)

	p1 := &models.Participant{ItemID: item.ID, UserID: 2, Status: models.ParticipantStatusPending}
	p2 := &models.Participant{ItemID: item.ID, UserID: 3, Status: models.ParticipantStatusPending}
	s.Require().NoError(s.repo.Create(p1))
	s.Require().NoError(s.repo.Create(p2))

	s.Require().NoError(s.repo.Approve(p1.ID, 1))
	s.Require().ErrorIs(s.repo.Approve(p2.ID, 1), ErrEventFull)

	var loser models.Participant
	s.Require().NoError(s.db.First(&loser, "id = ?", p2.ID).Error)
	s.Equal(models.ParticipantStatusPending, loser.Status)
	s.Equal(1, s.participantCount(item.ID))
}

// claimSlot's conditional increment is the serialization point for
// capacity. The second claim after the slot is taken matches no row.
func (s *ParticipantRepositoryTestSuite) TestClaimSlotConditionalIncrement() {
	item := s.createEvent(1)

	s.Require().NoError(claimSlot(s.db, item.ID))
	s.Require().ErrorIs(claimSlot(s.db, item.ID), ErrEventFull)
	s.Equal(1, s.participantCount(item.ID))
}

func TestParticipantRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ParticipantRepositoryTestSuite))
}
