package db

import (
	"context"
	"time"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/style"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DefaultListLimit is used when List is called without a positive limit
const DefaultListLimit = 50

// JobRepository keeps export job summaries in SQLite. It implements
// export.Recorder.
type JobRepository struct {
	db *gorm.DB
}

// JobModel is the GORM model for a finished export job. Input values and
// image bytes are never stored.
type JobModel struct {
	ID         uint   `gorm:"primaryKey"`
	JobID      string `gorm:"uniqueIndex;not null"`
	Mode       string `gorm:"not null"`
	Format     string `gorm:"not null"`
	State      string `gorm:"not null"`
	Requested  int
	Succeeded  int
	Skipped    int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time `gorm:"index"`
}

// GormLogger implements GORM's logger.Interface
type GormLogger struct{}

// LogMode implements the log.Interface method
func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	return l
}

// Info logs info messages
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxInfo(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Warn logs warn messages
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxWarn(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Error logs error messages
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	appLogger.CtxError(ctx, msg, appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Error: &appLogger.CustomError{
			Code:    constant.ErrCodeDBGeneral,
			Message: msg,
			Type:    constant.ErrTypeDB,
		},
		Data: map[string]interface{}{
			constant.DataData: data,
		},
	})
}

// Trace logs SQL operations
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil {
		appLogger.CtxError(ctx, "SQL error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBGeneral,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataElapsed: elapsed.String(),
				constant.DataRows:    rows,
				constant.DataSQL:     sql,
			},
		})
		return
	}

	// Only log SQL queries if in debug mode
	appLogger.CtxDebug(ctx, "SQL query", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataElapsed: elapsed.String(),
			constant.DataRows:    rows,
			constant.DataSQL:     sql,
		},
	})
}

// NewJobRepository opens (creating if needed) the SQLite database at dbPath
func NewJobRepository(dbPath string) (*JobRepository, error) {
	ctx := appLogger.NewRequestContext()

	appLogger.CtxDebug(ctx, "Opening SQLite database", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	dbLogger := &GormLogger{}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		appLogger.CtxError(ctx, "Failed to open database", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBOpen,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataPath: dbPath,
			},
		})
		return nil, err
	}

	if err := db.AutoMigrate(&JobModel{}); err != nil {
		appLogger.CtxError(ctx, "Failed to migrate database schema", appLogger.LoggerInfo{
			ContextFunction: constant.CtxDB,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBMigrate,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	appLogger.CtxInfo(ctx, "Database initialized successfully", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDB,
		Data: map[string]interface{}{
			constant.DataPath: dbPath,
		},
	})

	return &JobRepository{db: db}, nil
}

// Record stores the summary of a finished job
func (r *JobRepository) Record(ctx context.Context, result export.Result) error {
	model := JobModel{
		JobID:      result.JobID,
		Mode:       string(result.Mode),
		Format:     string(result.Format),
		State:      string(result.State),
		Requested:  result.Requested,
		Succeeded:  result.Succeeded,
		Skipped:    result.Skipped,
		Error:      result.Error,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}

	tx := r.db.WithContext(ctx).Create(&model)
	if err := tx.Error; err != nil {
		appLogger.CtxError(ctx, "Failed to insert job", appLogger.LoggerInfo{
			ContextFunction: constant.CtxRecordJob,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBInsert,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataJobID: result.JobID,
			},
		})
		return err
	}

	appLogger.CtxDebug(ctx, "Job recorded", appLogger.LoggerInfo{
		ContextFunction: constant.CtxRecordJob,
		Data: map[string]interface{}{
			constant.DataJobID:        result.JobID,
			constant.DataState:        result.State,
			constant.DataRowsAffected: tx.RowsAffected,
		},
	})

	return nil
}

// List returns up to limit job summaries, newest first
func (r *JobRepository) List(ctx context.Context, limit int) ([]export.Result, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.WithContext(ctx).Raw(`SELECT id, job_id, mode, format, state, requested, succeeded, skipped, error, started_at, finished_at FROM job_models ORDER BY id DESC LIMIT ?`, limit).Rows()
	if err != nil {
		appLogger.CtxError(ctx, "Database error while listing jobs", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListJobs,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBList,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
			Data: map[string]interface{}{
				constant.DataLimit: limit,
			},
		})
		return nil, err
	}
	defer rows.Close()

	results := make([]export.Result, 0, limit)
	for rows.Next() {
		var model JobModel
		if err := r.db.ScanRows(rows, &model); err != nil {
			appLogger.CtxError(ctx, "Failed to scan database rows", appLogger.LoggerInfo{
				ContextFunction: constant.CtxListJobs,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeDBList,
					Message: err.Error(),
					Type:    constant.ErrTypeDB,
				},
			})
			return nil, err
		}
		results = append(results, export.Result{
			JobID:      model.JobID,
			Mode:       style.Mode(model.Mode),
			Format:     style.Format(model.Format),
			State:      export.State(model.State),
			Requested:  model.Requested,
			Succeeded:  model.Succeeded,
			Skipped:    model.Skipped,
			Error:      model.Error,
			StartedAt:  model.StartedAt,
			FinishedAt: model.FinishedAt,
		})
	}

	if err := rows.Err(); err != nil {
		appLogger.CtxError(ctx, "Row iteration error", appLogger.LoggerInfo{
			ContextFunction: constant.CtxListJobs,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBList,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return nil, err
	}

	appLogger.CtxDebug(ctx, "Jobs listed", appLogger.LoggerInfo{
		ContextFunction: constant.CtxListJobs,
		Data: map[string]interface{}{
			constant.DataCount: len(results),
			constant.DataLimit: limit,
		},
	})

	return results, nil
}

// Close closes the database connection
func (r *JobRepository) Close() error {
	ctx := context.Background()
	sqlDB, err := r.db.DB()
	if err != nil {
		appLogger.CtxError(ctx, "Failed to get database connection", appLogger.LoggerInfo{
			ContextFunction: constant.CtxClose,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeDBClose,
				Message: err.Error(),
				Type:    constant.ErrTypeDB,
			},
		})
		return err
	}

	appLogger.CtxInfo(ctx, "Closing database connection", appLogger.LoggerInfo{
		ContextFunction: constant.CtxClose,
	})

	return sqlDB.Close()
}
