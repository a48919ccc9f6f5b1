package refreshtoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/SandipanKhanra/letschat/services/logging"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrRefreshTokenNotFound  = errors.New("refresh token not found")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrReuseDetected         = errors.New("refresh token reuse detected")
	ErrTokenGenerationFailed = errors.New("failed to generate secure token")
)

// errRotationLost signals that a concurrent rotation consumed the record
// between lookup and the conditional mark-used update.
var errRotationLost = errors.New("refresh token already consumed")

const minTokenLength = 32

type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
}

type AccessTokenIssuer interface {
	GenerateToken(userID uint) (string, error)
}

func NewService(db *gorm.DB, config *config.Config, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing refresh token service",
			zap.Duration("token_expiry", config.RefreshToken.Expiry),
			zap.Int("token_length", config.RefreshToken.TokenLength))
	}

	return &Service{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (s *Service) Generate(userID uint, sessionInfo TokenSessionInfo) (*RefreshTokenData, error) {
	if s.logger != nil {
		s.logger.Debug("generating refresh token",
			zap.Uint("user_id", userID))
	}

	token, err := s.generateSecureToken()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to generate secure refresh token", zap.Error(err))
		}
		return nil, ErrTokenGenerationFailed
	}

	record := s.newRecord(userID, token, sessionInfo)

	if err := s.db.Create(record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store refresh token", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("refresh token generated",
			zap.Uint("user_id", userID),
			zap.Uint("token_id", record.ID),
			zap.Time("expires_at", record.ExpiresAt))
	}

	return &RefreshTokenData{
		Token:     token,
		TokenID:   record.ID,
		Hash:      record.TokenHash,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *Service) FindByHash(hash string) (*RefreshToken, error) {
	var record RefreshToken
	err := s.db.Where("token_hash = ?", hash).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &record, nil
}

// Rotate drives the refresh-token state machine for a presented secret:
// unknown hashes reject without state change, expired records are removed,
// an already-used record is treated as theft and every record for that user
// is revoked, and a live record is consumed and replaced by a child record
// in one transaction. The mark-used update is conditional on used=false, so
// of two concurrent calls presenting the same secret exactly one commits;
// the loser takes the reuse path.
func (s *Service) Rotate(tokenString string, issuer AccessTokenIssuer, sessionInfo TokenSessionInfo) (*TokenRotationResult, error) {
	tokenHash := s.hashToken(tokenString)

	record, err := s.FindByHash(tokenHash)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) && s.logger != nil {
			s.logger.Warn("refresh rotation failed - token not found")
		}
		return nil, err
	}

	if time.Now().After(record.ExpiresAt) {
		if s.logger != nil {
			s.logger.Warn("refresh rotation failed - token expired",
				zap.Uint("token_id", record.ID),
				zap.Uint("user_id", record.UserID),
				zap.Time("expired_at", record.ExpiresAt))
		}
		s.db.Delete(record)
		return nil, ErrRefreshTokenExpired
	}

	if record.Used {
		return nil, s.handleReuse(record)
	}

	accessToken, err := issuer.GenerateToken(record.UserID)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("refresh rotation failed - access token generation error",
				zap.Error(err),
				zap.Uint("user_id", record.UserID))
		}
		return nil, fmt.Errorf("failed to generate new access token: %w", err)
	}

	newToken, err := s.generateSecureToken()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to generate secure refresh token", zap.Error(err))
		}
		return nil, ErrTokenGenerationFailed
	}

	child := s.newRecord(record.UserID, newToken, sessionInfo)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RefreshToken{}).
			Where("id = ? AND used = ?", record.ID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRotationLost
		}

		return tx.Create(child).Error
	})
	if err != nil {
		if errors.Is(err, errRotationLost) {
			return nil, s.handleReuse(record)
		}
		if s.logger != nil {
			s.logger.Error("refresh rotation failed - transaction error",
				zap.Error(err),
				zap.Uint("user_id", record.UserID))
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("refresh token rotated",
			zap.Uint("user_id", record.UserID),
			zap.Uint("old_token_id", record.ID),
			zap.Uint("new_token_id", child.ID))
	}

	return &TokenRotationResult{
		UserID:         record.UserID,
		AccessToken:    accessToken,
		RefreshToken:   newToken,
		RefreshTokenID: child.ID,
		OldTokenID:     record.ID,
		ExpiresAt:      child.ExpiresAt,
	}, nil
}

// handleReuse is the theft response: a rotated secret came back, so every
// session for that user is revoked. Fail closed, a legitimate duplicate
// submission pays the same price as an attacker.
func (s *Service) handleReuse(record *RefreshToken) error {
	if s.logger != nil {
		s.logger.Warn("refresh token reuse detected - revoking all user sessions",
			zap.Uint("token_id", record.ID),
			zap.Uint("user_id", record.UserID))
	}

	if err := s.RevokeAll(record.UserID); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke user sessions after reuse detection",
				zap.Error(err),
				zap.Uint("user_id", record.UserID))
		}
		return fmt.Errorf("failed to revoke sessions after reuse detection: %w", err)
	}

	return ErrReuseDetected
}

func (s *Service) Revoke(tokenString string) error {
	tokenHash := s.hashToken(tokenString)
	result := s.db.Where("token_hash = ?", tokenHash).Delete(&RefreshToken{})

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke refresh token", zap.Error(result.Error))
		}
		return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("refresh token revoked",
			zap.Int64("affected_rows", result.RowsAffected))
	}

	return nil
}

func (s *Service) RevokeAll(userID uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&RefreshToken{})

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke all user refresh tokens",
				zap.Error(result.Error),
				zap.Uint("user_id", userID))
		}
		return fmt.Errorf("failed to revoke all user refresh tokens: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("all user refresh tokens revoked",
			zap.Uint("user_id", userID),
			zap.Int64("count", result.RowsAffected))
	}

	return nil
}

// PruneExpired removes a single user's expired records. Called
// opportunistically on login rather than from a background sweeper.
func (s *Service) PruneExpired(userID uint) error {
	result := s.db.Where("user_id = ? AND expires_at < ?", userID, time.Now()).
		Delete(&RefreshToken{})

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to prune expired refresh tokens",
				zap.Error(result.Error),
				zap.Uint("user_id", userID))
		}
		return fmt.Errorf("failed to prune expired tokens: %w", result.Error)
	}

	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("pruned expired refresh tokens",
			zap.Uint("user_id", userID),
			zap.Int64("count", result.RowsAffected))
	}

	return nil
}

// ListActive returns the user's live records for session auditing.
func (s *Service) ListActive(userID uint) ([]RefreshToken, error) {
	var records []RefreshToken
	err := s.db.
		Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return records, nil
}

func (s *Service) newRecord(userID uint, token string, sessionInfo TokenSessionInfo) *RefreshToken {
	deviceInfo := ""
	if sessionInfo.UserAgent != "" {
		ua := useragent.Parse(sessionInfo.UserAgent)
		deviceInfo = fmt.Sprintf("%s %s / %s %s", ua.Name, ua.Version, ua.OS, ua.OSVersion)
	}

	return &RefreshToken{
		UserID:     userID,
		TokenHash:  s.hashToken(token),
		Used:       false,
		ExpiresAt:  time.Now().Add(s.config.RefreshToken.Expiry),
		CreatedAt:  time.Now(),
		IPAddress:  sessionInfo.IPAddress,
		UserAgent:  sessionInfo.UserAgent,
		DeviceInfo: deviceInfo,
	}
}

func (s *Service) generateSecureToken() (string, error) {
	length := s.config.RefreshToken.TokenLength
	if length < minTokenLength {
		length = minTokenLength
	}

	tokenBytes := make([]byte, length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

func (s *Service) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
