package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/queue"
	"github.com/fidelidade-next/internal/repository"

	"github.com/hibiken/asynq"
)

// ReportEnqueuer 报表任务投递
type ReportEnqueuer interface {
	EnqueueReportGenerate(payload queue.ReportGeneratePayload, opts ...asynq.Option) error
}

// ReportRequest 报表导出请求
type ReportRequest struct {
	Type     string
	DateFrom string
	DateTo   string
}

// ReportService 后台报表导出
type ReportService struct {
	cfg            *config.Config
	jobRepo        repository.ReportJobRepository
	profileRepo    repository.ProfileRepository
	merchantRepo   repository.MerchantRepository
	offerRepo      repository.OfferRepository
	enrollmentRepo repository.EnrollmentRepository
	enqueuer       ReportEnqueuer
}

// NewReportService 创建报表服务
func NewReportService(
	cfg *config.Config,
	jobRepo repository.ReportJobRepository,
	profileRepo repository.ProfileRepository,
	merchantRepo repository.MerchantRepository,
	offerRepo repository.OfferRepository,
	enrollmentRepo repository.EnrollmentRepository,
	enqueuer ReportEnqueuer,
) *ReportService {
	return &ReportService{
		cfg:            cfg,
		jobRepo:        jobRepo,
		profileRepo:    profileRepo,
		merchantRepo:   merchantRepo,
		offerRepo:      offerRepo,
		enrollmentRepo: enrollmentRepo,
		enqueuer:       enqueuer,
	}
}

// Request 创建报表任务并投递，队列未启用时同步生成
func (s *ReportService) Request(ctx context.Context, requestedBy string, req ReportRequest) (*models.ReportJob, error) {
	reportType := strings.ToLower(strings.TrimSpace(req.Type))
	if !isReportType(reportType) {
		return nil, ErrReportTypeInvalid
	}
	from, to, err := parseReportRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	job := &models.ReportJob{
		Type:        reportType,
		Status:      constants.ReportStatusPending,
		DateFrom:    from,
		DateTo:      to,
		RequestedBy: requestedBy,
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		err = s.enqueuer.EnqueueReportGenerate(queue.ReportGeneratePayload{ReportID: job.ID})
		if err == nil {
			logger.Infow("report_enqueued", "report_id", job.ID, "type", job.Type)
			return job, nil
		}
		if !errors.Is(err, queue.ErrDisabled) {
			logger.Errorw("report_enqueue_failed", "report_id", job.ID, "error", err)
			s.markFailed(job, err)
			return nil, ErrQueueUnavailable
		}
	}
	if err := s.Generate(ctx, job.ID); err != nil {
		return nil, err
	}
	return s.Get(job.ID)
}

// Get 查询报表任务
func (s *ReportService) Get(id string) (*models.ReportJob, error) {
	job, err := s.jobRepo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrReportNotFound
	}
	return job, nil
}

// FilePath 已完成报表的文件路径
func (s *ReportService) FilePath(id string) (*models.ReportJob, string, error) {
	job, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}
	if job.Status != constants.ReportStatusDone || job.FilePath == "" {
		return job, "", ErrReportNotReady
	}
	return job, job.FilePath, nil
}

// Generate 生成报表文件（由 worker 或同步路径调用）
func (s *ReportService) Generate(ctx context.Context, id string) error {
	job, err := s.Get(id)
	if err != nil {
		return err
	}
	if job.Status == constants.ReportStatusDone {
		return nil
	}
	job.Status = constants.ReportStatusRunning
	if err := s.jobRepo.Update(job); err != nil {
		return err
	}

	header, rows, err := s.collectRows(job)
	if err != nil {
		s.markFailed(job, err)
		return err
	}
	path, err := s.writeCSV(job, header, rows)
	if err != nil {
		s.markFailed(job, err)
		return err
	}

	now := time.Now()
	job.Status = constants.ReportStatusDone
	job.FilePath = path
	job.RowCount = len(rows)
	job.Error = ""
	job.FinishedAt = &now
	if err := s.jobRepo.Update(job); err != nil {
		return err
	}
	logger.Infow("report_generated", "report_id", job.ID, "type", job.Type, "rows", job.RowCount)
	return nil
}

func (s *ReportService) collectRows(job *models.ReportJob) ([]string, [][]string, error) {
	switch job.Type {
	case constants.ReportTypeUsers, constants.ReportTypeCustomers:
		filter := repository.ProfileListFilter{CreatedFrom: job.DateFrom, CreatedTo: job.DateTo}
		if job.Type == constants.ReportTypeCustomers {
			filter.Role = constants.RoleCustomer
		}
		profiles, _, err := s.profileRepo.List(filter)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(profiles))
		for _, p := range profiles {
			rows = append(rows, []string{p.ID, p.Name, p.Email, p.Role, p.Status, formatReportTime(p.CreatedAt)})
		}
		return []string{"id", "name", "email", "role", "status", "created_at"}, rows, nil
	case constants.ReportTypeMerchants:
		merchants, _, err := s.merchantRepo.List(repository.MerchantListFilter{})
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(merchants))
		for _, m := range merchants {
			rows = append(rows, []string{m.ID, m.StoreName, m.City, m.State, m.CNPJ, strconv.FormatBool(m.Active), formatReportTime(m.CreatedAt)})
		}
		return []string{"id", "store_name", "city", "state", "cnpj", "active", "created_at"}, rows, nil
	case constants.ReportTypeOffers:
		offers, _, err := s.offerRepo.List(repository.OfferListFilter{CreatedFrom: job.DateFrom, CreatedTo: job.DateTo})
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(offers))
		for _, o := range offers {
			rows = append(rows, []string{
				o.ID, o.MerchantID, o.Title, o.TotalPrice.String(),
				strconv.Itoa(o.PointsPercentage), strconv.FormatInt(o.PointsRequired, 10),
				o.ValidUntil.String(), strconv.FormatBool(o.Active),
			})
		}
		return []string{"id", "merchant_id", "title", "total_price", "points_percentage", "points_required", "valid_until", "active"}, rows, nil
	case constants.ReportTypePoints:
		totals, err := s.enrollmentRepo.SumPointsByCustomer()
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(totals))
		for _, row := range totals {
			rows = append(rows, []string{row.CustomerID, row.Name, row.Email, strconv.FormatInt(row.StoreCount, 10), strconv.FormatInt(row.TotalPoints, 10)})
		}
		return []string{"customer_id", "name", "email", "store_count", "total_points"}, rows, nil
	default:
		return nil, nil, ErrReportTypeInvalid
	}
}

func (s *ReportService) writeCSV(job *models.ReportJob, header []string, rows [][]string) (string, error) {
	dir := "reports"
	if s.cfg != nil && strings.TrimSpace(s.cfg.Report.Dir) != "" {
		dir = strings.TrimSpace(s.cfg.Report.Dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir failed: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", job.Type, job.ID, constants.ExportFormatCSV))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file failed: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return "", err
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return path, nil
}

func (s *ReportService) markFailed(job *models.ReportJob, cause error) {
	now := time.Now()
	job.Status = constants.ReportStatusFailed
	job.Error = cause.Error()
	job.FinishedAt = &now
	if err := s.jobRepo.Update(job); err != nil {
		logger.Errorw("report_mark_failed_error", "report_id", job.ID, "error", err)
	}
	logger.Warnw("report_failed", "report_id", job.ID, "type", job.Type, "error", cause)
}

func parseReportRange(rawFrom, rawTo string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if value := strings.TrimSpace(rawFrom); value != "" {
		parsed, err := time.ParseInLocation(constants.DateLayout, value, time.Local)
		if err != nil {
			return nil, nil, ErrReportDateInvalid
		}
		from = &parsed
	}
	if value := strings.TrimSpace(rawTo); value != "" {
		parsed, err := time.ParseInLocation(constants.DateLayout, value, time.Local)
		if err != nil {
			return nil, nil, ErrReportDateInvalid
		}
		// 结束日期包含当天
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, ErrReportDateInvalid
	}
	return from, to, nil
}

func isReportType(reportType string) bool {
	for _, item := range constants.ReportTypes {
		if item == reportType {
			return true
		}
	}
	return false
}

func formatReportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
