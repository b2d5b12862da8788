package domain

// OptionalInt64 различает «поле отсутствует в запросе» и «поле передано
// со значением null». Set выставляется только если поле присутствовало.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

// IssuePatch — частичное обновление задачи: учитываются только явно
// переданные поля. Для assignee null означает снятие исполнителя.
type IssuePatch struct {
	Title       *string
	Description *string
	Status      *IssueStatus
	Priority    *IssuePriority
	Assignee    OptionalInt64
	Version     int64
}
