package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"issue-tracker-service/internal/domain"
)

// ImportService реализует CSV-импорт задач: строки валидируются независимо,
// валидные стейджатся в одной общей транзакции, результат собирается построчно.
type ImportService struct {
	issueRepo domain.IssueRepository
	userRepo  domain.UserRepository
}

// NewImportService создаёт новый ImportService.
func NewImportService(issueRepo domain.IssueRepository, userRepo domain.UserRepository) *ImportService {
	return &ImportService{
		issueRepo: issueRepo,
		userRepo:  userRepo,
	}
}

// ImportCSV читает CSV с заголовком и создаёт задачи по валидным строкам.
// Ошибка одной строки не прерывает обработку остальных; весь батч
// коммитится одной транзакцией, поэтому сбой на коммите откатывает и
// строки, уже помеченные успешными, и возвращается как общая ошибка.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()

	if err == io.EOF {
		return domain.ImportResult{Results: []domain.ImportRowResult{}}, nil
	}

	if err != nil {
		return domain.ImportResult{}, domain.NewDomainError(domain.ErrorCodeValidation, fmt.Errorf("read csv header: %w", err))
	}

	columns := make(map[string]int, len(header))

	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	type parsedRow struct {
		rowNumber int
		record    []string
		readErr   error
	}

	var rows []parsedRow

	// Заголовок — строка 1, данные начинаются со строки 2.
	for rowNumber := 2; ; rowNumber++ {
		record, err := reader.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			rows = append(rows, parsedRow{rowNumber: rowNumber, readErr: err})
			continue
		}

		rows = append(rows, parsedRow{rowNumber: rowNumber, record: record})
	}

	result := domain.ImportResult{Results: make([]domain.ImportRowResult, 0, len(rows))}

	err = s.issueRepo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, row := range rows {
			var rowResult domain.ImportRowResult

			if row.readErr != nil {
				rowResult = domain.ImportRowResult{
					RowNumber: row.rowNumber,
					Success:   false,
					Errors:    []string{row.readErr.Error()},
				}

			} else {
				var err error
				rowResult, err = s.processRow(ctx, tx, columns, row.record, row.rowNumber)

				if err != nil {
					return err
				}
			}

			result.Results = append(result.Results, rowResult)

			if rowResult.Success {
				result.Successful++

			} else {
				result.Failed++
			}
		}

		return nil
	})

	if err != nil {
		return domain.ImportResult{}, err
	}

	result.TotalRows = len(result.Results)
	return result, nil
}

// processRow валидирует одну строку и при успехе стейджит вставку в рамках
// общей транзакции. Ошибки валидации возвращаются как данные; ненулевая
// ошибка означает инфраструктурный сбой и прерывает весь батч.
func (s *ImportService) processRow(
	ctx context.Context,
	tx *sql.Tx,
	columns map[string]int,
	record []string,
	rowNumber int,
) (domain.ImportRowResult, error) {
	field := func(name string) string {
		i, ok := columns[name]

		if !ok || i >= len(record) {
			return ""
		}

		return record[i]
	}

	fail := func(errs ...string) domain.ImportRowResult {
		return domain.ImportRowResult{
			RowNumber: rowNumber,
			Success:   false,
			Errors:    errs,
		}
	}

	var errs []string

	title := field("title")
	creatorRaw := field("creator_id")

	if title == "" {
		errs = append(errs, "Title is required")
	}

	if creatorRaw == "" {
		errs = append(errs, "Creator ID is required")
	}

	if len(errs) > 0 {
		return fail(errs...), nil
	}

	creatorID, err := strconv.ParseInt(creatorRaw, 10, 64)

	if err != nil {
		return fail(err.Error()), nil
	}

	exists, err := s.userRepo.Exists(ctx, creatorID)

	if err != nil {
		return domain.ImportRowResult{}, err
	}

	if !exists {
		return fail(fmt.Sprintf("Creator with ID %d not found", creatorID)), nil
	}

	var assigneeID *int64

	if raw := field("assignee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)

		if err != nil {
			return fail(err.Error()), nil
		}

		exists, err := s.userRepo.Exists(ctx, id)

		if err != nil {
			return domain.ImportRowResult{}, err
		}

		if !exists {
			return fail(fmt.Sprintf("Assignee with ID %d not found", id)), nil
		}

		assigneeID = &id
	}

	status := domain.IssueStatus(field("status"))

	if status == "" {
		status = domain.IssueStatusOpen
	}

	if !domain.ValidIssueStatus(status) {
		return fail(fmt.Sprintf("invalid status value: %s", status)), nil
	}

	priority := domain.IssuePriority(field("priority"))

	if priority == "" {
		priority = domain.IssuePriorityMedium
	}

	if !domain.ValidIssuePriority(priority) {
		return fail(fmt.Sprintf("invalid priority value: %s", priority)), nil
	}

	issue := domain.Issue{
		Title:       title,
		Description: field("description"),
		Status:      status,
		Priority:    priority,
		CreatorID:   creatorID,
		AssigneeID:  assigneeID,
	}

	if err := s.issueRepo.CreateTx(ctx, tx, &issue); err != nil {
		return domain.ImportRowResult{}, err
	}

	return domain.ImportRowResult{
		RowNumber: rowNumber,
		Success:   true,
		IssueID:   &issue.ID,
	}, nil
}
