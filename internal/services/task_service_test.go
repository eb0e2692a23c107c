package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kbsvc/kanban-board-api/internal/models"
	"github.com/kbsvc/kanban-board-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.Task{})
	suite.Require().NoError(err)

	suite.service = NewTaskService(repository.NewTaskRepository(suite.db))
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func futureDate(days int) *time.Time {
	d := time.Now().UTC().AddDate(0, 0, days)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// createSampleTasks seeds one task per priority level plus one without
// a priority, spread over assignees, statuses and due dates.
func (suite *TaskServiceTestSuite) createSampleTasks() []*models.Task {
	inputs := []CreateTaskInput{
		{
			Title:       "High Priority Task",
			Assignee:    strPtr("John Doe"),
			Priority:    strPtr("High"),
			Status:      "To Do",
			DueDate:     futureDate(7),
			Description: strPtr("Important task"),
		},
		{
			Title:       "Medium Priority Task",
			Assignee:    strPtr("Jane Smith"),
			Priority:    strPtr("Medium"),
			Status:      "In Progress",
			DueDate:     futureDate(14),
			Description: strPtr("Regular task"),
		},
		{
			Title:       "Low Priority Task",
			Assignee:    strPtr("John Doe"),
			Priority:    strPtr("Low"),
			Status:      "Done",
			DueDate:     futureDate(21),
			Description: strPtr("Minor task"),
		},
		{
			Title:       "Critical Priority Task",
			Assignee:    strPtr("Alice Johnson"),
			Priority:    strPtr("Critical"),
			Status:      "To Do",
			DueDate:     futureDate(1),
			Description: strPtr("Urgent critical task"),
		},
		{
			Title:    "No Priority Task",
			Assignee: strPtr("Bob Wilson"),
			Status:   "In Progress",
			DueDate:  futureDate(30),
		},
	}

	created := make([]*models.Task, len(inputs))
	for i, input := range inputs {
		task, err := suite.service.CreateTask(input)
		suite.Require().NoError(err)
		created[i] = task
	}
	return created
}

func (suite *TaskServiceTestSuite) TestCreateTask_Success() {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:         "  Write report  ",
		Assignee:      strPtr("John Doe"),
		Priority:      strPtr("High"),
		Status:        "To Do",
		DueDate:       futureDate(3),
		Labels:        []string{" urgent ", "", "q3"},
		EstimatedTime: floatPtr(4.5),
	})

	suite.Require().NoError(err)
	assert.NotEqual(suite.T(), uuid.Nil, task.ID)
	assert.Equal(suite.T(), "Write report", task.Title)
	assert.Equal(suite.T(), models.StatusToDo, task.Status)
	assert.Equal(suite.T(), models.PriorityHigh, *task.Priority)
	assert.Equal(suite.T(), []string{"urgent", "q3"}, task.Labels)
	assert.True(suite.T(), task.CreatedAt.Equal(task.LastModified))
	assert.Nil(suite.T(), task.DeletedAt)
}

func (suite *TaskServiceTestSuite) TestCreateTask_EmptyTitle() {
	_, err := suite.service.CreateTask(CreateTaskInput{Title: "   ", Status: "To Do"})
	assert.ErrorIs(suite.T(), err, ErrTitleEmpty)
}

func (suite *TaskServiceTestSuite) TestCreateTask_InvalidStatus() {
	_, err := suite.service.CreateTask(CreateTaskInput{Title: "Task", Status: "Blocked"})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatus)
}

func (suite *TaskServiceTestSuite) TestCreateTask_InvalidPriority() {
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:    "Task",
		Status:   "To Do",
		Priority: strPtr("Urgent"),
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidPriority)
}

func (suite *TaskServiceTestSuite) TestCreateTask_BlankPriorityTreatedAsNone() {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:    "Task",
		Status:   "To Do",
		Priority: strPtr("   "),
	})
	suite.Require().NoError(err)
	assert.Nil(suite.T(), task.Priority)
}

func (suite *TaskServiceTestSuite) TestCreateTask_PastDueDate() {
	past := time.Now().UTC().AddDate(0, 0, -1)
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:   "Task",
		Status:  "To Do",
		DueDate: &past,
	})
	assert.ErrorIs(suite.T(), err, ErrPastDueDate)
}

func (suite *TaskServiceTestSuite) TestCreateTask_TodayDueDateAllowed() {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:   "Task",
		Status:  "To Do",
		DueDate: &today,
	})
	assert.NoError(suite.T(), err)
}

func (suite *TaskServiceTestSuite) TestCreateTask_NegativeEstimatedTime() {
	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:         "Task",
		Status:        "To Do",
		EstimatedTime: floatPtr(-1.5),
	})
	assert.ErrorIs(suite.T(), err, ErrNegativeEstimatedTime)
}

func (suite *TaskServiceTestSuite) TestGetTask_Success() {
	created := suite.createSampleTasks()

	task, err := suite.service.GetTask(created[0].ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), created[0].ID, task.ID)
	assert.Equal(suite.T(), "High Priority Task", task.Title)
}

func (suite *TaskServiceTestSuite) TestGetTask_NotFound() {
	_, err := suite.service.GetTask(uuid.New())
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestListTasks_NoFilters() {
	suite.createSampleTasks()

	tasks, total, err := suite.service.ListTasks(ListTasksInput{Limit: 10})
	suite.Require().NoError(err)
	assert.Len(suite.T(), tasks, 5)
	assert.Equal(suite.T(), int64(5), total)
}

func (suite *TaskServiceTestSuite) TestListTasks_StatusFilter() {
	suite.createSampleTasks()

	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		Status: strPtr("To Do"),
		Limit:  10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	for _, task := range tasks {
		assert.Equal(suite.T(), models.StatusToDo, task.Status)
	}
}

func (suite *TaskServiceTestSuite) TestListTasks_PriorityFilter() {
	suite.createSampleTasks()

	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		Priority: strPtr("Critical"),
		Limit:    10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Critical Priority Task", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_AssigneeFilterCaseInsensitive() {
	suite.createSampleTasks()

	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		Assignee: strPtr("john d"),
		Limit:    10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	for _, task := range tasks {
		assert.Equal(suite.T(), "John Doe", *task.Assignee)
	}
}

func (suite *TaskServiceTestSuite) TestListTasks_SearchTermMatchesTitleOrDescription() {
	suite.createSampleTasks()

	// "urgent" appears in the description of one task and nowhere in titles
	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		SearchTerm: strPtr("URGENT"),
		Limit:      10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Critical Priority Task", tasks[0].Title)

	// "priority" appears in four titles
	_, total, err = suite.service.ListTasks(ListTasksInput{
		SearchTerm: strPtr("priority task"),
		Limit:      10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(5), total)
}

func (suite *TaskServiceTestSuite) TestListTasks_DueDateRange() {
	suite.createSampleTasks()

	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		DueDateStart: futureDate(5),
		DueDateEnd:   futureDate(21),
		Limit:        10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(3), total)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	assert.ElementsMatch(suite.T(),
		[]string{"High Priority Task", "Medium Priority Task", "Low Priority Task"}, titles)
}

func (suite *TaskServiceTestSuite) TestListTasks_CombinedFilters() {
	suite.createSampleTasks()

	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		Status:   strPtr("In Progress"),
		Assignee: strPtr("jane"),
		Limit:    10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Medium Priority Task", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_Pagination() {
	suite.createSampleTasks()

	page1, total, err := suite.service.ListTasks(ListTasksInput{
		SortBy: "created_at", SortOrder: "asc", Limit: 2, Offset: 0,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(5), total)
	assert.Len(suite.T(), page1, 2)

	page3, total, err := suite.service.ListTasks(ListTasksInput{
		SortBy: "created_at", SortOrder: "asc", Limit: 2, Offset: 4,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(5), total)
	assert.Len(suite.T(), page3, 1)
}

func (suite *TaskServiceTestSuite) TestListTasks_SortByPriority() {
	suite.createSampleTasks()

	tasks, _, err := suite.service.ListTasks(ListTasksInput{
		SortBy: "priority", SortOrder: "desc", Limit: 10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []string{"Critical", "High", "Medium", "Low", ""}, priorityNames(tasks))

	// Ascending reverses the ranked levels; tasks without a priority
	// still sort last.
	tasks, _, err = suite.service.ListTasks(ListTasksInput{
		SortBy: "priority", SortOrder: "asc", Limit: 10,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []string{"Low", "Medium", "High", "Critical", ""}, priorityNames(tasks))
}

func priorityNames(tasks []models.Task) []string {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		if task.Priority != nil {
			names[i] = string(*task.Priority)
		}
	}
	return names
}

func (suite *TaskServiceTestSuite) TestListTasks_SortByDueDate() {
	suite.createSampleTasks()

	tasks, _, err := suite.service.ListTasks(ListTasksInput{
		SortBy: "due_date", SortOrder: "asc", Limit: 10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 5)
	for i := 1; i < len(tasks); i++ {
		assert.False(suite.T(), tasks[i].DueDate.Before(*tasks[i-1].DueDate))
	}
}

func (suite *TaskServiceTestSuite) TestListTasks_InvalidSortBy() {
	repo := &recordingRepo{}
	service := NewTaskService(repo)

	_, _, err := service.ListTasks(ListTasksInput{SortBy: "bogus", Limit: 10})
	assert.ErrorIs(suite.T(), err, ErrInvalidSortBy)
	assert.Contains(suite.T(), err.Error(), `"bogus"`)
	assert.False(suite.T(), repo.listCalled, "invalid sort parameters must fail before any query")
}

func (suite *TaskServiceTestSuite) TestListTasks_InvalidSortOrder() {
	repo := &recordingRepo{}
	service := NewTaskService(repo)

	_, _, err := service.ListTasks(ListTasksInput{SortOrder: "sideways", Limit: 10})
	assert.ErrorIs(suite.T(), err, ErrInvalidSortOrder)
	assert.False(suite.T(), repo.listCalled)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_PartialUpdate() {
	created := suite.createSampleTasks()
	target := created[0] // To Do

	task, err := suite.service.UpdateTask(target.ID, UpdateTaskInput{
		Title:  strPtr("Renamed task"),
		Status: strPtr("In Progress"),
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Renamed task", task.Title)
	assert.Equal(suite.T(), models.StatusInProgress, task.Status)
	assert.Equal(suite.T(), "John Doe", *task.Assignee)
	assert.Equal(suite.T(), models.PriorityHigh, *task.Priority)
	assert.True(suite.T(), task.LastModified.After(target.CreatedAt))
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NotFound() {
	_, err := suite.service.UpdateTask(uuid.New(), UpdateTaskInput{Title: strPtr("x")})
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_EmptyTitle() {
	created := suite.createSampleTasks()

	_, err := suite.service.UpdateTask(created[0].ID, UpdateTaskInput{Title: strPtr("  ")})
	assert.ErrorIs(suite.T(), err, ErrTitleEmpty)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ClearDueDate() {
	created := suite.createSampleTasks()

	task, err := suite.service.UpdateTask(created[0].ID, UpdateTaskInput{ClearDueDate: true})
	suite.Require().NoError(err)
	assert.Nil(suite.T(), task.DueDate)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_InvalidTransition() {
	created := suite.createSampleTasks()
	target := created[0] // To Do

	_, err := suite.service.UpdateTask(target.ID, UpdateTaskInput{Status: strPtr("Done")})
	assert.ErrorIs(suite.T(), err, ErrInvalidStatusTransition)
	assert.Contains(suite.T(), err.Error(), "from 'To Do' to 'Done'")

	// The failed update must not have touched the row
	stored, err := suite.service.GetTask(target.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusToDo, stored.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_SameStatusAllowed() {
	created := suite.createSampleTasks()
	target := created[0] // To Do

	task, err := suite.service.UpdateTask(target.ID, UpdateTaskInput{Status: strPtr("To Do")})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusToDo, task.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_UndoTransitionsAllowed() {
	created := suite.createSampleTasks()
	target := created[2] // Done

	task, err := suite.service.UpdateTask(target.ID, UpdateTaskInput{Status: strPtr("To Do")})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.StatusToDo, task.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_StaleLastModified() {
	created := suite.createSampleTasks()
	target := created[0]

	stale := target.LastModified.Add(-time.Hour)
	_, err := suite.service.UpdateTask(target.ID, UpdateTaskInput{
		Title:                strPtr("Renamed"),
		ExpectedLastModified: &stale,
	})
	assert.ErrorIs(suite.T(), err, ErrStaleTask)

	stored, err := suite.service.GetTask(target.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "High Priority Task", stored.Title)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_MatchingLastModified() {
	created := suite.createSampleTasks()
	target := created[0]

	stored, err := suite.service.GetTask(target.ID)
	suite.Require().NoError(err)

	expected := stored.LastModified
	task, err := suite.service.UpdateTask(target.ID, UpdateTaskInput{
		Title:                strPtr("Renamed"),
		ExpectedLastModified: &expected,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Renamed", task.Title)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_SoftIsIdempotent() {
	created := suite.createSampleTasks()
	target := created[0]

	message, err := suite.service.DeleteTask(target.ID, true)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Task soft-deleted successfully", message)

	stored, err := suite.service.GetTask(target.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.DeletedAt)
	firstTombstone := *stored.DeletedAt
	assert.Equal(suite.T(), "High Priority Task", stored.Title)

	// Repeating the soft delete succeeds and refreshes the tombstone
	time.Sleep(10 * time.Millisecond)
	_, err = suite.service.DeleteTask(target.ID, true)
	suite.Require().NoError(err)

	stored, err = suite.service.GetTask(target.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.DeletedAt)
	assert.True(suite.T(), stored.DeletedAt.After(firstTombstone))
}

func (suite *TaskServiceTestSuite) TestDeleteTask_HardRemovesRow() {
	created := suite.createSampleTasks()
	target := created[0]

	message, err := suite.service.DeleteTask(target.ID, false)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Task hard-deleted successfully", message)

	_, err = suite.service.GetTask(target.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)

	// A second hard delete reports not-found
	_, err = suite.service.DeleteTask(target.ID, false)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_HardAfterSoft() {
	created := suite.createSampleTasks()
	target := created[0]

	_, err := suite.service.DeleteTask(target.ID, true)
	suite.Require().NoError(err)
	_, err = suite.service.DeleteTask(target.ID, true)
	suite.Require().NoError(err)

	_, err = suite.service.DeleteTask(target.ID, false)
	suite.Require().NoError(err)

	_, err = suite.service.DeleteTask(target.ID, false)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_NotFound() {
	_, err := suite.service.DeleteTask(uuid.New(), true)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)

	_, err = suite.service.DeleteTask(uuid.New(), false)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

// recordingRepo tracks whether List was invoked
type recordingRepo struct {
	repository.TaskRepository
	listCalled bool
}

func (r *recordingRepo) List(filter repository.TaskFilter) ([]models.Task, int64, error) {
	r.listCalled = true
	return nil, 0, nil
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
