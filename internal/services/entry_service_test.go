package services

import (
	"context"
	"errors"
	"testing"

	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/recognition"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EntryServiceTestSuite struct {
	suite.Suite
	ocr        *mockPlateReader
	faces      *mockFaceRecognizer
	residents  *mockResidentRepo
	guests     *mockGuestRepo
	audit      *recordingAuditService
	service    EntryService
	actorID    uuid.UUID
	plateImage Image
	faceImage  Image
	context    context.Context
}

func (suite *EntryServiceTestSuite) SetupTest() {
	suite.ocr = new(mockPlateReader)
	suite.faces = new(mockFaceRecognizer)
	suite.residents = new(mockResidentRepo)
	suite.guests = new(mockGuestRepo)
	suite.audit = &recordingAuditService{}
	suite.service = NewEntryService(suite.ocr, suite.faces, suite.residents, suite.guests, suite.audit, logrus.New())
	suite.actorID = uuid.New()
	suite.plateImage = Image{Name: "plate.jpg", Data: []byte("plate-bytes")}
	suite.faceImage = Image{Name: "face.jpg", Data: []byte("face-bytes")}
	suite.context = context.Background()
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}

func (suite *EntryServiceTestSuite) expectOCR(plate string) {
	suite.ocr.On("ReadPlate", suite.context, "plate.jpg", suite.plateImage.Data).
		Return(&recognition.PlateResult{Plate: plate}, nil)
}

func (suite *EntryServiceTestSuite) expectFace(id string, confidence float64) {
	suite.faces.On("Recognize", suite.context, "face.jpg", suite.faceImage.Data).
		Return(&recognition.FaceResult{
			ID:           id,
			Confidence:   confidence,
			Demographics: models.Demographics{Gender: "Man", AgeRange: "38-43"},
		}, nil)
}

func (suite *EntryServiceTestSuite) lastEntryPayload() models.EntryVerificationPayload {
	require.NotEmpty(suite.T(), suite.audit.entries)
	return suite.audit.entries[len(suite.audit.entries)-1].Payload.(models.EntryVerificationPayload)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_ResidentMatch() {
	userID := uuid.New()
	faceRef := "faces/resident.jpg"
	resident := &models.Resident{ID: uuid.New(), UserID: userID, FaceRef: &faceRef}

	suite.expectOCR("ABC123")
	suite.expectFace(userID.String(), 0.95)
	suite.residents.On("FindEntryMatch", suite.context, "ABC123", userID).Return(resident, nil)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MatchTypeResident, result.Type)
	assert.Equal(suite.T(), "ABC123", result.Plate)
	assert.Equal(suite.T(), userID, result.UserID)
	assert.Equal(suite.T(), 0.95, result.FaceConfidence)

	require.Len(suite.T(), suite.audit.entries, 1)
	payload := suite.lastEntryPayload()
	assert.Equal(suite.T(), models.AuditStatusResidentAccess, payload.Status)
	assert.Equal(suite.T(), "ABC123", payload.Plate)

	suite.guests.AssertNotCalled(suite.T(), "FindEntryMatch", mock.Anything, mock.Anything, mock.Anything)
	suite.guests.AssertNotCalled(suite.T(), "MarkArrived", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_GuestMatch() {
	guestID := uuid.New()
	faceRef := "faces/guest.jpg"
	guest := &models.Guest{ID: guestID, ResidentID: uuid.New(), FaceRef: &faceRef, Status: models.GuestStatusPending}

	suite.expectOCR("XYZ789")
	suite.expectFace(guestID.String(), 0.91)
	suite.residents.On("FindEntryMatch", suite.context, "XYZ789", guestID).Return(nil, nil)
	suite.guests.On("FindEntryMatch", suite.context, "XYZ789", guestID).Return(guest, nil)
	suite.guests.On("MarkArrived", suite.context, guestID).Return(true, nil)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MatchTypeGuest, result.Type)
	assert.Equal(suite.T(), guestID, result.GuestID)
	assert.Equal(suite.T(), guest.ResidentID, result.ResidentID)

	payload := suite.lastEntryPayload()
	assert.Equal(suite.T(), models.AuditStatusGuestArrived, payload.Status)
	assert.Equal(suite.T(), &guestID, payload.GuestID)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_PlateUnreadable() {
	suite.ocr.On("ReadPlate", suite.context, "plate.jpg", suite.plateImage.Data).
		Return(nil, common.Wrap(common.ErrPlateUnreadable, "no plate detected"))

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	assert.ErrorIs(suite.T(), err, common.ErrPlateUnreadable)
	assert.Nil(suite.T(), result)

	// The face recognizer must not run when OCR already failed.
	suite.faces.AssertNotCalled(suite.T(), "Recognize", mock.Anything, mock.Anything, mock.Anything)

	payload := suite.lastEntryPayload()
	assert.Equal(suite.T(), models.AuditStatusFailed, payload.Status)
	assert.Equal(suite.T(), models.ReasonPlateRecognitionFailed, payload.Reason)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_OCRTransportErrorIsNotAudited() {
	transportErr := errors.New("connection refused")
	suite.ocr.On("ReadPlate", suite.context, "plate.jpg", suite.plateImage.Data).
		Return(nil, transportErr)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	assert.ErrorIs(suite.T(), err, transportErr)
	assert.Nil(suite.T(), result)
	assert.Empty(suite.T(), suite.audit.entries)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_FaceNotRecognized() {
	suite.expectOCR("ABC123")
	suite.expectFace(recognition.UnknownIdentity, 0)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	assert.ErrorIs(suite.T(), err, common.ErrFaceNotRecognized)

	// Demographics still come back for manual review.
	require.NotNil(suite.T(), result)
	assert.Equal(suite.T(), "Man", result.Demographics.Gender)

	payload := suite.lastEntryPayload()
	assert.Equal(suite.T(), models.AuditStatusFailed, payload.Status)
	assert.Equal(suite.T(), models.ReasonFaceNotRecognized, payload.Reason)
	assert.Equal(suite.T(), "ABC123", payload.Plate)

	suite.residents.AssertNotCalled(suite.T(), "FindEntryMatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_PlateAndFaceFromDifferentPeople() {
	// Resident A's plate with resident B's face: both recognitions succeed
	// individually but the joint lookups find nothing and the gate stays shut.
	userB := uuid.New()
	suite.expectOCR("ABC123")
	suite.expectFace(userB.String(), 0.97)
	suite.residents.On("FindEntryMatch", suite.context, "ABC123", userB).Return(nil, nil)
	suite.guests.On("FindEntryMatch", suite.context, "ABC123", userB).Return(nil, nil)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	assert.ErrorIs(suite.T(), err, common.ErrNoMatch)
	assert.Nil(suite.T(), result)

	suite.guests.AssertNotCalled(suite.T(), "MarkArrived", mock.Anything, mock.Anything)

	payload := suite.lastEntryPayload()
	assert.Equal(suite.T(), models.AuditStatusFailed, payload.Status)
	assert.Equal(suite.T(), models.ReasonNoMatch, payload.Reason)
	assert.Equal(suite.T(), userB.String(), payload.FaceID)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_GuestLostRace() {
	guestID := uuid.New()
	faceRef := "faces/guest.jpg"
	guest := &models.Guest{ID: guestID, ResidentID: uuid.New(), FaceRef: &faceRef, Status: models.GuestStatusPending}

	suite.expectOCR("XYZ789")
	suite.expectFace(guestID.String(), 0.91)
	suite.residents.On("FindEntryMatch", suite.context, "XYZ789", guestID).Return(nil, nil)
	suite.guests.On("FindEntryMatch", suite.context, "XYZ789", guestID).Return(guest, nil)
	suite.guests.On("MarkArrived", suite.context, guestID).Return(false, nil)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	assert.ErrorIs(suite.T(), err, common.ErrNoMatch)
	assert.Nil(suite.T(), result)

	payload := suite.lastEntryPayload()
	assert.Equal(suite.T(), models.ReasonNoMatch, payload.Reason)
}

func (suite *EntryServiceTestSuite) TestVerifyEntry_RepositoryError() {
	userID := uuid.New()
	dbErr := errors.New("database connection failed")
	suite.expectOCR("ABC123")
	suite.expectFace(userID.String(), 0.9)
	suite.residents.On("FindEntryMatch", suite.context, "ABC123", userID).Return(nil, dbErr)

	result, err := suite.service.VerifyEntry(suite.context, suite.plateImage, suite.faceImage, suite.actorID)
	assert.ErrorIs(suite.T(), err, dbErr)
	assert.Nil(suite.T(), result)
	assert.Empty(suite.T(), suite.audit.entries)
}
