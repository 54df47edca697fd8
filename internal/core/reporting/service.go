package reporting

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/codex-reporting-api/internal/platform/logging"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// UseCase は報告ライン取得の公開インターフェースです。
type UseCase interface {
	GetReportingStructure(ctx context.Context, in GetReportingStructureInput) (*ReportingStructure, error)
}

// GetReportingStructureInput は報告ライン取得時の入力です。
type GetReportingStructureInput struct {
	EmployeeID string
}

// Service は階層の読み込みと部下数の集計をまとめます。
type Service struct {
	loader  *Loader
	tx      TransactionManager
	timeout time.Duration
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithTimeout は 1 回の集計に許容する時間を設定します。0 以下は無制限です。
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService は Service を生成します。
func NewService(lookup Lookup, tx TransactionManager, opts ...Option) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{loader: NewLoader(lookup), tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetReportingStructure は指定社員を起点とした部下ツリーと部下総数を返します。
// 社員が存在しない場合はエラーではなく Found() == false の構造を返します。
func (s *Service) GetReportingStructure(ctx context.Context, in GetReportingStructureInput) (*ReportingStructure, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if id == "" {
		return nil, ErrInvalidID
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	logger := logging.FromContext(ctx).WithField("employee_id", id)

	var result *ReportingStructure
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		root, found, err := s.loader.Load(txCtx, id)
		if err != nil {
			return err
		}
		if !found {
			result = &ReportingStructure{}
			return nil
		}

		count, err := CountReports(txCtx, root, s.loader)
		if err != nil {
			return err
		}
		result = newReportingStructure(root, count)
		return nil
	})
	traversalLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		traversalTotal.WithLabelValues(resultError).Inc()
		logger.WithError(err).Warn("reporting structure failed")
		return nil, err
	}

	if !result.Found() {
		traversalTotal.WithLabelValues(resultNotFound).Inc()
		logger.Debug("reporting structure root not found")
		return result, nil
	}

	traversalTotal.WithLabelValues(resultFound).Inc()
	traversalNodes.Observe(float64(*result.NumberOfReports + 1))
	logger.WithFields(logrus.Fields{
		"number_of_reports": *result.NumberOfReports,
		"elapsed":           time.Since(start),
	}).Debug("reporting structure computed")

	return result, nil
}
