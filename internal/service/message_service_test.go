package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "clinicdesk/internal/errors"
	"clinicdesk/internal/model"
)

func TestSend_PatientAlwaysRoutedToClinician(t *testing.T) {
	patient := &model.User{ID: 7, Role: model.RolePatient}
	clinician := &model.User{ID: 1, Role: model.RoleClinician}

	users := new(MockUserRepository)
	messages := new(MockMessageRepository)
	users.On("FindClinician", mock.Anything).Return(clinician, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewMessageService(users, messages)

	// A patient-supplied destination is ignored; the clinician receives it.
	message, err := svc.Send(context.Background(), patient, 42, "bom dia")
	require.NoError(t, err)
	assert.Equal(t, uint(7), message.SenderID)
	assert.Equal(t, uint(1), message.RecipientID)
	assert.Equal(t, "bom dia", message.Body)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSend_EmptyBody(t *testing.T) {
	svc := NewMessageService(new(MockUserRepository), new(MockMessageRepository))
	_, err := svc.Send(context.Background(), &model.User{ID: 7, Role: model.RolePatient}, 0, "")
	assertKind(t, err, apperrors.KindValidation)
}

func TestSend_ClinicianNeedsRecipient(t *testing.T) {
	clinician := &model.User{ID: 1, Role: model.RoleClinician}
	svc := NewMessageService(new(MockUserRepository), new(MockMessageRepository))
	_, err := svc.Send(context.Background(), clinician, 0, "ola")
	assertKind(t, err, apperrors.KindValidation)
}

func TestSend_RecipientNotFound(t *testing.T) {
	clinician := &model.User{ID: 1, Role: model.RoleClinician}

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewMessageService(users, new(MockMessageRepository))
	_, err := svc.Send(context.Background(), clinician, 99, "ola")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestSend_PatientNoClinician(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindClinician", mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewMessageService(users, new(MockMessageRepository))
	_, err := svc.Send(context.Background(), &model.User{ID: 7, Role: model.RolePatient}, 0, "ola")
	assertKind(t, err, apperrors.KindNotFound)
}

func TestListMessages_MarksUnreadExactlyOnce(t *testing.T) {
	patient := &model.User{ID: 7, Role: model.RolePatient}
	clinician := &model.User{ID: 1, Role: model.RoleClinician}
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	conversation := []model.Message{
		{ID: 1, SenderID: 7, RecipientID: 1, Body: "oi", Read: true, CreatedAt: base},
		{ID: 2, SenderID: 1, RecipientID: 7, Body: "oi, tudo bem?", Read: false, CreatedAt: base.Add(time.Minute)},
		{ID: 3, SenderID: 1, RecipientID: 7, Body: "alguma novidade?", Read: false, CreatedAt: base.Add(2 * time.Minute)},
	}

	users := new(MockUserRepository)
	messages := new(MockMessageRepository)
	users.On("FindClinician", mock.Anything).Return(clinician, nil)
	messages.On("ListBetween", mock.Anything, uint(7), uint(1)).Return(conversation, nil)
	messages.On("MarkRead", mock.Anything, []uint{2, 3}).Return(nil)

	svc := NewMessageService(users, messages)
	got, err := svc.ListMessages(context.Background(), patient, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, message := range got {
		if message.RecipientID == patient.ID {
			assert.True(t, message.Read, "returned copy must already show lida=true")
		}
	}
	messages.AssertNumberOfCalls(t, "MarkRead", 1)

	// Second listing: everything already read, no receipt update issued.
	allRead := []model.Message{
		{ID: 1, SenderID: 7, RecipientID: 1, Read: true, CreatedAt: base},
		{ID: 2, SenderID: 1, RecipientID: 7, Read: true, CreatedAt: base.Add(time.Minute)},
		{ID: 3, SenderID: 1, RecipientID: 7, Read: true, CreatedAt: base.Add(2 * time.Minute)},
	}
	users2 := new(MockUserRepository)
	messages2 := new(MockMessageRepository)
	users2.On("FindClinician", mock.Anything).Return(clinician, nil)
	messages2.On("ListBetween", mock.Anything, uint(7), uint(1)).Return(allRead, nil)

	svc2 := NewMessageService(users2, messages2)
	_, err = svc2.ListMessages(context.Background(), patient, 0)
	require.NoError(t, err)
	messages2.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestListMessages_SentMessagesNotMarked(t *testing.T) {
	clinician := &model.User{ID: 1, Role: model.RoleClinician}
	conversation := []model.Message{
		// Unread, but addressed to the counterpart, not the actor.
		{ID: 4, SenderID: 1, RecipientID: 7, Read: false},
	}

	messages := new(MockMessageRepository)
	messages.On("ListBetween", mock.Anything, uint(1), uint(7)).Return(conversation, nil)

	svc := NewMessageService(new(MockUserRepository), messages)
	_, err := svc.ListMessages(context.Background(), clinician, 7)
	require.NoError(t, err)
	messages.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestListConversations_OrderedByLastMessageDesc(t *testing.T) {
	clinician := &model.User{ID: 1, Role: model.RoleClinician}
	patientA := &model.User{ID: 7, Role: model.RolePatient, FullName: "Ana"}
	patientB := &model.User{ID: 8, Role: model.RolePatient, FullName: "Bruno"}
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Newest-first across all counterparts, as the repository returns them.
	all := []model.Message{
		{ID: 5, SenderID: 8, RecipientID: 1, Body: "resultado chegou?", Read: false, CreatedAt: base.Add(3 * time.Hour)},
		{ID: 4, SenderID: 1, RecipientID: 7, Body: "ate amanha", Read: false, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, SenderID: 7, RecipientID: 1, Body: "obrigada", Read: false, CreatedAt: base.Add(time.Hour)},
		{ID: 2, SenderID: 8, RecipientID: 1, Body: "bom dia", Read: true, CreatedAt: base},
	}

	users := new(MockUserRepository)
	messages := new(MockMessageRepository)
	messages.On("ListInvolving", mock.Anything, uint(1)).Return(all, nil)
	users.On("FindByID", mock.Anything, uint(7)).Return(patientA, nil)
	users.On("FindByID", mock.Anything, uint(8)).Return(patientB, nil)

	svc := NewMessageService(users, messages)
	summaries, err := svc.ListConversations(context.Background(), clinician)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, uint(8), summaries[0].User.ID)
	assert.Equal(t, uint(5), summaries[0].LastMessage.ID)
	assert.Equal(t, 1, summaries[0].UnreadCount)

	assert.Equal(t, uint(7), summaries[1].User.ID)
	assert.Equal(t, uint(4), summaries[1].LastMessage.ID)
	assert.Equal(t, 1, summaries[1].UnreadCount)
}

func TestListConversations_SkipsMissingCounterpart(t *testing.T) {
	clinician := &model.User{ID: 1, Role: model.RoleClinician}
	all := []model.Message{
		{ID: 2, SenderID: 9, RecipientID: 1, CreatedAt: time.Now()},
	}

	users := new(MockUserRepository)
	messages := new(MockMessageRepository)
	messages.On("ListInvolving", mock.Anything, uint(1)).Return(all, nil)
	users.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewMessageService(users, messages)
	summaries, err := svc.ListConversations(context.Background(), clinician)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestListConversations_PatientWithoutClinician(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindClinician", mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewMessageService(users, new(MockMessageRepository))
	summaries, err := svc.ListConversations(context.Background(), &model.User{ID: 7, Role: model.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, []ConversationSummary{}, summaries)
}

func TestListConversations_PatientEmptyConversation(t *testing.T) {
	patient := &model.User{ID: 7, Role: model.RolePatient}
	clinician := &model.User{ID: 1, Role: model.RoleClinician}

	users := new(MockUserRepository)
	messages := new(MockMessageRepository)
	users.On("FindClinician", mock.Anything).Return(clinician, nil)
	messages.On("ListBetween", mock.Anything, uint(7), uint(1)).Return([]model.Message{}, nil)

	svc := NewMessageService(users, messages)
	summaries, err := svc.ListConversations(context.Background(), patient)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].LastMessage)
	assert.Zero(t, summaries[0].UnreadCount)
}

func TestSummarySortKey_EmptySentinelSortsLast(t *testing.T) {
	withMessage := ConversationSummary{LastMessage: &model.Message{CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}}
	withoutMessage := ConversationSummary{}

	assert.Equal(t, "", summarySortKey(withoutMessage))
	assert.Greater(t, summarySortKey(withMessage), summarySortKey(withoutMessage))
}
