package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// postgres driver
	_ "github.com/lib/pq"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx so the same query
// methods serve transactional and non-transactional callers.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type postgresStore struct {
	db *sqlx.DB // nil when bound to a transaction
	q  queryer
}

// NewStore creates a postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db, q: db}
}

func (s *postgresStore) UpsertReview(ctx context.Context, projectID, mrIID int64) (*core.Review, error) {
	// The no-op DO UPDATE makes RETURNING yield the existing row, so
	// concurrent first deliveries converge on one review.
	query := `
		INSERT INTO reviews (project_id, merge_request_iid, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (project_id, merge_request_iid)
		DO UPDATE SET updated_at = NOW()
		RETURNING id, project_id, merge_request_iid, status, created_at, updated_at`

	var r core.Review
	if err := s.q.GetContext(ctx, &r, query, projectID, mrIID, core.ReviewPending); err != nil {
		return nil, fmt.Errorf("upsert review %d/%d: %w", projectID, mrIID, err)
	}
	return &r, nil
}

func (s *postgresStore) GetReview(ctx context.Context, projectID, mrIID int64) (*core.Review, error) {
	query := `
		SELECT id, project_id, merge_request_iid, status, created_at, updated_at
		FROM reviews
		WHERE project_id = $1 AND merge_request_iid = $2`

	var r core.Review
	if err := s.q.GetContext(ctx, &r, query, projectID, mrIID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review %d/%d: %w", projectID, mrIID, err)
	}
	return &r, nil
}

func (s *postgresStore) UpdateReviewStatus(ctx context.Context, reviewID int64, status core.ReviewStatus) error {
	query := `UPDATE reviews SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := s.q.ExecContext(ctx, query, reviewID, status); err != nil {
		return fmt.Errorf("update review %d status to %s: %w", reviewID, status, err)
	}
	return nil
}

func (s *postgresStore) UpsertFileVerdict(ctx context.Context, fv *core.FileVerdict) (*core.FileVerdict, error) {
	// A changed fingerprint resets the row to pending; an unchanged one
	// preserves the stored processed/verdict state.
	query := `
		INSERT INTO file_verdicts (review_id, file_path, change_type, diff_fingerprint, processed, verdict)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		ON CONFLICT (review_id, file_path) DO UPDATE SET
			change_type      = EXCLUDED.change_type,
			diff_fingerprint = EXCLUDED.diff_fingerprint,
			processed        = CASE WHEN file_verdicts.diff_fingerprint = EXCLUDED.diff_fingerprint
			                        THEN file_verdicts.processed ELSE FALSE END,
			verdict          = CASE WHEN file_verdicts.diff_fingerprint = EXCLUDED.diff_fingerprint
			                        THEN file_verdicts.verdict ELSE $5 END
		RETURNING id, review_id, file_path, change_type, diff_fingerprint, processed, verdict`

	var out core.FileVerdict
	err := s.q.GetContext(ctx, &out, query,
		fv.ReviewID, fv.FilePath, fv.ChangeType, fv.DiffFingerprint, core.VerdictPending)
	if err != nil {
		return nil, fmt.Errorf("upsert file verdict %q for review %d: %w", fv.FilePath, fv.ReviewID, err)
	}
	return &out, nil
}

func (s *postgresStore) CompleteFileVerdict(ctx context.Context, fileVerdictID int64, verdict core.VerdictState) error {
	query := `UPDATE file_verdicts SET processed = TRUE, verdict = $2 WHERE id = $1`
	if _, err := s.q.ExecContext(ctx, query, fileVerdictID, verdict); err != nil {
		return fmt.Errorf("complete file verdict %d: %w", fileVerdictID, err)
	}
	return nil
}

func (s *postgresStore) ListFileVerdicts(ctx context.Context, reviewID int64) ([]core.FileVerdict, error) {
	query := `
		SELECT id, review_id, file_path, change_type, diff_fingerprint, processed, verdict
		FROM file_verdicts
		WHERE review_id = $1
		ORDER BY file_path`

	var out []core.FileVerdict
	if err := s.q.SelectContext(ctx, &out, query, reviewID); err != nil {
		return nil, fmt.Errorf("list file verdicts for review %d: %w", reviewID, err)
	}
	return out, nil
}

func (s *postgresStore) GetDiscussion(ctx context.Context, reviewID int64, filePath string) (*core.Discussion, error) {
	query := `
		SELECT id, review_id, file_path, external_id, resolved
		FROM discussions
		WHERE review_id = $1 AND file_path = $2`

	var d core.Discussion
	if err := s.q.GetContext(ctx, &d, query, reviewID, filePath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get discussion for review %d file %q: %w", reviewID, filePath, err)
	}
	return &d, nil
}

func (s *postgresStore) SaveDiscussion(ctx context.Context, d *core.Discussion) error {
	query := `
		INSERT INTO discussions (review_id, file_path, external_id, resolved)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (review_id, file_path) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			resolved    = EXCLUDED.resolved
		RETURNING id`

	if err := s.q.GetContext(ctx, &d.ID, query, d.ReviewID, d.FilePath, d.ExternalID, d.Resolved); err != nil {
		return fmt.Errorf("save discussion for review %d file %q: %w", d.ReviewID, d.FilePath, err)
	}
	return nil
}

func (s *postgresStore) MarkDiscussionResolved(ctx context.Context, discussionID int64) error {
	query := `UPDATE discussions SET resolved = TRUE WHERE id = $1`
	if _, err := s.q.ExecContext(ctx, query, discussionID); err != nil {
		return fmt.Errorf("mark discussion %d resolved: %w", discussionID, err)
	}
	return nil
}

func (s *postgresStore) AppendLLMMessage(ctx context.Context, m *core.LLMMessage) error {
	query := `
		INSERT INTO llm_messages (file_verdict_id, message_type, content, tokens_used, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if err := s.q.GetContext(ctx, &m.ID, query, m.FileVerdictID, m.MessageType, m.Content, m.TokensUsed, createdAt); err != nil {
		return fmt.Errorf("append llm message for file verdict %d: %w", m.FileVerdictID, err)
	}
	return nil
}

func (s *postgresStore) SumTokens(ctx context.Context, reviewID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(m.tokens_used), 0)
		FROM llm_messages m
		JOIN file_verdicts fv ON fv.id = m.file_verdict_id
		WHERE fv.review_id = $1`

	var total int64
	if err := s.q.GetContext(ctx, &total, query, reviewID); err != nil {
		return 0, fmt.Errorf("sum tokens for review %d: %w", reviewID, err)
	}
	return total, nil
}

func (s *postgresStore) Tx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		// Already inside a transaction.
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&postgresStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
