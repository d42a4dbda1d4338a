package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

const requestBodyMaxSize = 1 << 20

// Deps carries the services the handlers delegate to.
type Deps struct {
	Mover    Mover
	Tasks    Tasks
	Sections Sections
	Projects Projects
	Logger   *log.Logger
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, deps Deps) {
	e.POST("/api/projects", createProject(deps))
	e.GET("/api/projects/:id/board", getBoard(deps))
	e.POST("/api/sections", createSection(deps))
	e.POST("/api/tasks", createTask(deps))
	e.PATCH("/api/tasks/:id", updateTask(deps))
	e.DELETE("/api/tasks/:id", deleteTask(deps))
	e.POST("/api/tasks/:id/move", moveTask(deps))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// actorID identifies who performed the change for notification and automation
// purposes. Authentication is out of scope; the caller self-identifies.
func actorID(c echo.Context) string {
	return c.Request().Header.Get("X-Actor-ID")
}

func decodeBody(c echo.Context, v interface{}) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.String(http.StatusConflict, err.Error())
	default:
		c.Logger().Error(err)
		return c.String(http.StatusInternalServerError, err.Error())
	}
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func createProject(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createProjectRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Name == "" {
			return c.String(http.StatusBadRequest, "name is required")
		}
		project, err := deps.Projects.Create(c.Request().Context(), req.Name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, project)
	}
}

func getBoard(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		board, err := deps.Projects.Board(c.Request().Context(), c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, board)
	}
}

func createSection(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req domain.CreateSection
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.ProjectID == "" || req.Name == "" {
			return c.String(http.StatusBadRequest, "projectId and name are required")
		}
		section, err := deps.Sections.Create(c.Request().Context(), req, actorID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, section)
	}
}

func createTask(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req domain.CreateTask
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.SectionID == "" || req.Title == "" {
			return c.String(http.StatusBadRequest, "sectionId and title are required")
		}
		task, err := deps.Tasks.Create(c.Request().Context(), req, actorID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req domain.TaskUpdate
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		task, err := deps.Tasks.Update(c.Request().Context(), c.Param("id"), req, actorID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := deps.Tasks.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type moveRequest struct {
	SectionID string `json:"sectionId"`
	Order     int    `json:"order"`
}

func moveTask(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newMoveRequestMetrics(deps.Logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		decodeStart := time.Now()
		var req moveRequest
		decodeErr := decodeBody(c, &req)
		metrics.ObserveDecode(time.Since(decodeStart))
		if decodeErr != nil {
			metrics.SetErrorStage("decode")
			err = c.String(http.StatusBadRequest, "invalid body")
			return err
		}
		if req.SectionID == "" {
			metrics.SetErrorStage("missing_section")
			err = c.String(http.StatusBadRequest, "sectionId is required")
			return err
		}
		if req.Order < 0 {
			metrics.SetErrorStage("invalid_order")
			err = c.String(http.StatusBadRequest, "order must not be negative")
			return err
		}

		cmd := domain.MoveCommand{TaskID: c.Param("id"), SectionID: req.SectionID, Order: req.Order}
		moveStart := time.Now()
		task, moveErr := deps.Mover.Move(c.Request().Context(), cmd, actorID(c))
		metrics.ObserveMove(time.Since(moveStart))
		if moveErr != nil {
			switch {
			case errors.Is(moveErr, domain.ErrNotFound):
				metrics.SetErrorStage("not_found")
			case errors.Is(moveErr, domain.ErrConcurrencyConflict):
				metrics.SetErrorStage("conflict")
			default:
				metrics.SetErrorStage("storage")
			}
			err = writeError(c, moveErr)
			return err
		}

		metrics.SetPlacement(task.ID, task.Order)
		err = c.JSON(http.StatusOK, task)
		return err
	}
}
