package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxEvidenceSize caps an evidence attachment at 50MB.
const MaxEvidenceSize = 50 * 1024 * 1024

// EvidenceStore keeps tip attachments and returns their public URL.
type EvidenceStore interface {
	Save(ctx context.Context, file *multipart.FileHeader, key string) (string, error)
}

// SubmitTipInput is a tip as posted. Amount is a pointer so a missing value
// is rejected instead of read as 0.
type SubmitTipInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required,max=5000"`
	Amount      *int64 `json:"amount" form:"amount" validate:"required,gte=0"`
	Location    string `json:"location" form:"location" validate:"required,max=200"`
}

type ImpactInput struct {
	ImpactScore int `json:"impact_score" form:"impact_score" validate:"gte=0,lte=100"`
}

// TipSubmission is the result of a successful submit: the stored tip, the
// report it was promoted to and the rewards it earned.
type TipSubmission struct {
	Tip     *models.Tip    `json:"tip"`
	Report  *models.Report `json:"report"`
	Rewards *TipRewards    `json:"rewards"`
}

type TipService struct {
	Store    store.Ledger
	Engine   *GamificationService
	Evidence EvidenceStore
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func NewTipService(ledger store.Ledger, engine *GamificationService, evidence EvidenceStore, log logrus.FieldLogger) *TipService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TipService{
		Store:    ledger,
		Engine:   engine,
		Evidence: evidence,
		Log:      log,
		Now:      time.Now,
	}
}

// Submit stores a tip, lists it as a user-submitted report and runs the
// gamification engine for the submitting user. When the engine fails the
// submission is still returned alongside the error, holding the rewards
// applied before the failing step.
func (s *TipService) Submit(ctx context.Context, userID uint, in SubmitTipInput, evidence *multipart.FileHeader) (*TipSubmission, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := s.Store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	tip := &models.Tip{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Amount:      *in.Amount,
		Location:    in.Location,
	}

	if evidence != nil {
		url, err := s.saveEvidence(ctx, evidence)
		if err != nil {
			return nil, err
		}
		tip.Evidence = &url
	}

	if err := s.Store.SubmitTip(ctx, tip); err != nil {
		return nil, err
	}

	report, err := s.Store.PromoteTip(ctx, tip, s.Now().Year())
	if err != nil {
		return nil, err
	}

	rewards, err := s.Engine.ProcessTipSubmission(ctx, userID, tip.Amount)
	if err != nil {
		// The tip is stored; hand back whatever rewards were applied.
		return &TipSubmission{Tip: tip, Report: report, Rewards: rewards},
			fmt.Errorf("process rewards for tip %d: %w", tip.ID, err)
	}

	s.Log.WithFields(logrus.Fields{
		"tip_id":    tip.ID,
		"report_id": report.ID,
		"user_id":   userID,
	}).Info("📨 Tip submitted")

	return &TipSubmission{Tip: tip, Report: report, Rewards: rewards}, nil
}

func (s *TipService) saveEvidence(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.Evidence == nil {
		return "", fmt.Errorf("%w: evidence uploads are disabled", ErrValidation)
	}
	if file.Size > MaxEvidenceSize {
		return "", fmt.Errorf("%w: evidence must be at most %d bytes", ErrValidation, MaxEvidenceSize)
	}
	key := "evidence/" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	url, err := s.Evidence.Save(ctx, file, key)
	if err != nil {
		return "", fmt.Errorf("save evidence: %w", err)
	}
	return url, nil
}

func (s *TipService) List(ctx context.Context) ([]models.Tip, error) {
	return s.Store.ListTips(ctx)
}

// Verify adds one verification to a tip. Verified tips count toward the
// active hunter figure.
func (s *TipService) Verify(ctx context.Context, tipID uint) error {
	if err := s.Store.VerifyTip(ctx, tipID); err != nil {
		return err
	}
	s.Log.WithField("tip_id", tipID).Info("✅ Tip verified")
	return nil
}

func (s *TipService) SetImpact(ctx context.Context, tipID uint, in ImpactInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	return s.Store.UpdateTipImpact(ctx, tipID, in.ImpactScore)
}
