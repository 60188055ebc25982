package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/tdfdash/internal/ai"
	"github.com/KaramelBytes/tdfdash/internal/chart"
	"github.com/KaramelBytes/tdfdash/internal/chat"
	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/stages"
)

var errUnknownSession = errors.New("unknown session")

// attritionView is the JSON shape of the attrition view.
type attritionView struct {
	Axis   []string               `json:"axis"`
	Series []stages.YearAttrition `json:"series"`
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func abortJSON(c *gin.Context, status int, err error) {
	body := gin.H{"error": err.Error()}
	if hint := ai.Hint(err); hint != "" {
		body["hint"] = hint
	}
	c.IndentedJSON(status, body)
	_ = c.AbortWithError(status, err)
}

// viewsFor returns the views of the ?session= dataset, or the full dataset.
func (s *Server) viewsFor(c *gin.Context) (*report.Views, bool) {
	id := c.Query("session")
	if id == "" {
		return s.baseViews(), true
	}
	sess, ok := s.reg.Get(id)
	if !ok {
		abortJSON(c, http.StatusNotFound, errUnknownSession)
		return nil, false
	}
	if sess.Filter() == "" {
		return s.baseViews(), true
	}
	return report.Build(s.baseViews().Name+" (filtered)", sess.Rows(), s.density), true
}

func (s *Server) health(c *gin.Context) {
	v := s.baseViews()
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok", "source": v.Name, "rows": v.Rows, "sessions": s.reg.Len()})
}

func (s *Server) allViews(c *gin.Context) {
	v, ok := s.viewsFor(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, v)
}

func (s *Server) view(c *gin.Context) {
	v, ok := s.viewsFor(c)
	if !ok {
		return
	}
	switch name := c.Param("name"); name {
	case chart.StageWins:
		c.IndentedJSON(http.StatusOK, v.StageWins)
	case chart.StagesCompleted:
		c.IndentedJSON(http.StatusOK, v.StagesCompleted)
	case chart.StageTime:
		c.IndentedJSON(http.StatusOK, v.StageTime)
	case chart.Age:
		c.IndentedJSON(http.StatusOK, v.Age)
	case chart.AttritionChart:
		c.IndentedJSON(http.StatusOK, attritionView{Axis: v.StageAxis, Series: v.Attrition})
	default:
		abortJSON(c, http.StatusNotFound, fmt.Errorf("unknown view %q", name))
	}
}

func (s *Server) chartPNG(c *gin.Context) {
	file := c.Param("file")
	name, ok := strings.CutSuffix(file, ".png")
	if !ok {
		abortJSON(c, http.StatusNotFound, fmt.Errorf("unknown chart %q", file))
		return
	}
	v, ok := s.viewsFor(c)
	if !ok {
		return
	}
	p, err := chart.Render(name, v)
	if err != nil {
		abortJSON(c, http.StatusNotFound, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, p, 0, 0); err != nil {
		abortJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) greeting(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"greeting": s.reg.Greeting()})
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.reg.Create()
	c.IndentedJSON(http.StatusCreated, gin.H{"id": sess.ID, "greeting": sess.Greeting()})
}

func (s *Server) session(c *gin.Context) (*chat.Session, bool) {
	sess, ok := s.reg.Get(c.Param("id"))
	if !ok {
		abortJSON(c, http.StatusNotFound, errUnknownSession)
	}
	return sess, ok
}

func (s *Server) ask(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, http.StatusBadRequest, err)
		return
	}
	reply, err := sess.Ask(c.Request.Context(), req.Question)
	if err != nil {
		abortJSON(c, http.StatusBadGateway, err)
		return
	}
	c.IndentedJSON(http.StatusOK, reply)
}

func (s *Server) reset(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sess.Reset()
	c.IndentedJSON(http.StatusOK, gin.H{"id": sess.ID, "rows": len(sess.Rows())})
}

func (s *Server) deleteSession(c *gin.Context) {
	if _, ok := s.session(c); !ok {
		return
	}
	s.reg.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}
