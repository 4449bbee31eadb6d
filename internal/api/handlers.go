package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baiirun/tracker/internal/model"
)

// Tasks

// GET /tasks
func (s *Server) handleListTasks(c *gin.Context) {
	tasks := s.manager.ListTasks()
	records := make([]model.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.Record())
	}
	c.JSON(http.StatusOK, RecordsJSON(records))
}

// GET /tasks/:id
func (s *Server) handleGetTask(c *gin.Context) {
	const tag = "[tasks][get]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	task, err := s.manager.GetTask(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	c.JSON(http.StatusOK, NewRecordJSON(task.Record()))
}

// POST /tasks
func (s *Server) handleSaveTask(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[tasks][save]", err)
		return
	}
	item, err := req.item()
	if err != nil {
		writeError(c, "[tasks][save]", err)
		return
	}

	if req.ID == nil {
		const tag = "[tasks][create]"
		task, err := s.manager.CreateTask(model.Task{Item: item})
		if err != nil {
			writeError(c, tag, err)
			return
		}
		log.Printf("[api]%s id=%d name=%q", tag, task.ID, task.Name)
		c.JSON(http.StatusCreated, NewRecordJSON(task.Record()))
		return
	}

	const tag = "[tasks][update]"
	task, err := s.manager.UpdateTask(model.Task{Item: item})
	if err != nil {
		writeError(c, tag, err)
		return
	}
	log.Printf("[api]%s id=%d", tag, task.ID)
	c.JSON(http.StatusOK, NewRecordJSON(task.Record()))
}

// DELETE /tasks/:id
func (s *Server) handleDeleteTask(c *gin.Context) {
	const tag = "[tasks][delete]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	task, err := s.manager.DeleteTask(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	log.Printf("[api]%s id=%d", tag, id)
	c.JSON(http.StatusOK, NewRecordJSON(task.Record()))
}

// DELETE /tasks
func (s *Server) handleDeleteAllTasks(c *gin.Context) {
	if err := s.manager.DeleteAllTasks(); err != nil {
		writeError(c, "[tasks][clear]", err)
		return
	}
	log.Printf("[api][tasks][clear] done")
	c.Status(http.StatusNoContent)
}

// Subtasks

// GET /subtasks
func (s *Server) handleListSubtasks(c *gin.Context) {
	c.JSON(http.StatusOK, subtasksJSON(s.manager.ListSubtasks()))
}

// GET /subtasks/:id
func (s *Server) handleGetSubtask(c *gin.Context) {
	const tag = "[subtasks][get]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	sub, err := s.manager.GetSubtask(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	c.JSON(http.StatusOK, NewRecordJSON(sub.Record()))
}

// POST /subtasks
func (s *Server) handleSaveSubtask(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[subtasks][save]", err)
		return
	}
	if req.EpicID == nil {
		writeError(c, "[subtasks][save]", errMissingEpicID)
		return
	}
	item, err := req.item()
	if err != nil {
		writeError(c, "[subtasks][save]", err)
		return
	}
	in := model.Subtask{Item: item, EpicID: *req.EpicID}

	if req.ID == nil {
		const tag = "[subtasks][create]"
		sub, err := s.manager.CreateSubtask(in)
		if err != nil {
			writeError(c, tag, err)
			return
		}
		log.Printf("[api]%s id=%d epic=%d name=%q", tag, sub.ID, sub.EpicID, sub.Name)
		c.JSON(http.StatusCreated, NewRecordJSON(sub.Record()))
		return
	}

	const tag = "[subtasks][update]"
	sub, err := s.manager.UpdateSubtask(in)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	log.Printf("[api]%s id=%d epic=%d", tag, sub.ID, sub.EpicID)
	c.JSON(http.StatusOK, NewRecordJSON(sub.Record()))
}

// DELETE /subtasks/:id
func (s *Server) handleDeleteSubtask(c *gin.Context) {
	const tag = "[subtasks][delete]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	sub, err := s.manager.DeleteSubtask(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	log.Printf("[api]%s id=%d epic=%d", tag, id, sub.EpicID)
	c.JSON(http.StatusOK, NewRecordJSON(sub.Record()))
}

// DELETE /subtasks
func (s *Server) handleDeleteAllSubtasks(c *gin.Context) {
	if err := s.manager.DeleteAllSubtasks(); err != nil {
		writeError(c, "[subtasks][clear]", err)
		return
	}
	log.Printf("[api][subtasks][clear] done")
	c.Status(http.StatusNoContent)
}

// Epics

// GET /epics
func (s *Server) handleListEpics(c *gin.Context) {
	epics := s.manager.ListEpics()
	records := make([]model.Record, 0, len(epics))
	for _, e := range epics {
		records = append(records, e.Record())
	}
	c.JSON(http.StatusOK, RecordsJSON(records))
}

// GET /epics/:id
func (s *Server) handleGetEpic(c *gin.Context) {
	const tag = "[epics][get]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	epic, err := s.manager.GetEpic(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	c.JSON(http.StatusOK, NewRecordJSON(epic.Record()))
}

// GET /epics/:id/subtasks
func (s *Server) handleEpicSubtasks(c *gin.Context) {
	const tag = "[epics][subtasks]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	subs, err := s.manager.EpicSubtasks(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	c.JSON(http.StatusOK, subtasksJSON(subs))
}

// POST /epics
func (s *Server) handleSaveEpic(c *gin.Context) {
	var req epicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "[epics][save]", err)
		return
	}
	in, err := req.epic()
	if err != nil {
		writeError(c, "[epics][save]", err)
		return
	}

	if req.ID == nil {
		const tag = "[epics][create]"
		epic, err := s.manager.CreateEpic(in)
		if err != nil {
			writeError(c, tag, err)
			return
		}
		log.Printf("[api]%s id=%d name=%q", tag, epic.ID, epic.Name)
		c.JSON(http.StatusCreated, NewRecordJSON(epic.Record()))
		return
	}

	const tag = "[epics][update]"
	epic, err := s.manager.UpdateEpic(in)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	log.Printf("[api]%s id=%d", tag, epic.ID)
	c.JSON(http.StatusOK, NewRecordJSON(epic.Record()))
}

// DELETE /epics/:id
func (s *Server) handleDeleteEpic(c *gin.Context) {
	const tag = "[epics][delete]"
	id, ok := pathID(c, tag)
	if !ok {
		return
	}
	epic, err := s.manager.DeleteEpic(id)
	if err != nil {
		writeError(c, tag, err)
		return
	}
	log.Printf("[api]%s id=%d subtasks=%d", tag, id, len(epic.SubtaskIDs))
	c.JSON(http.StatusOK, NewRecordJSON(epic.Record()))
}

// DELETE /epics
func (s *Server) handleDeleteAllEpics(c *gin.Context) {
	if err := s.manager.DeleteAllEpics(); err != nil {
		writeError(c, "[epics][clear]", err)
		return
	}
	log.Printf("[api][epics][clear] done")
	c.Status(http.StatusNoContent)
}

// Views

// GET /history
func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, RecordsJSON(s.manager.GetHistory()))
}

// GET /prioritized
func (s *Server) handlePrioritized(c *gin.Context) {
	c.JSON(http.StatusOK, RecordsJSON(s.manager.GetPrioritized()))
}

func subtasksJSON(subs []model.Subtask) []RecordJSON {
	records := make([]model.Record, 0, len(subs))
	for _, s := range subs {
		records = append(records, s.Record())
	}
	return RecordsJSON(records)
}
