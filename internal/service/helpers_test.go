package service

import (
	"context"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/greez/greez/internal/domain"
	pkgmocks "github.com/greez/greez/pkg/mocks"
)

func newQuietLogger(ctrl *gomock.Controller) *pkgmocks.MockLogger {
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return mockLogger
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func staffUser() *domain.User {
	return &domain.User{ID: "staff-1", Email: "ops@greez.test", Role: domain.UserRoleStaff}
}

func partnerUser(invitationID string) *domain.User {
	return &domain.User{ID: "partner-1", Email: "jane@acme.test", Role: domain.UserRolePartner, InvitationID: strPtr(invitationID)}
}

func sessionContext(userID, sessionID string) context.Context {
	ctx := context.WithValue(context.Background(), domain.UserIDKey, userID)
	return context.WithValue(ctx, domain.SessionIDKey, sessionID)
}

func testSubmission(id, invitationID string, status domain.SubmissionStatus) *domain.Submission {
	now := time.Now().UTC()
	return &domain.Submission{
		ID:           id,
		InvitationID: invitationID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testProduct(id, submissionID string) *domain.Product {
	return domain.NewProduct(id, submissionID, domain.ProductInput{Name: "Widget", Description: "A widget", Price: floatPtr(10)})
}
