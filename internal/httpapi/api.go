package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"krankmeldung/internal/model"
	"krankmeldung/internal/service"
)

func (s *Server) listKrankmeldungen(c *gin.Context) {
	f := model.KrankmeldungFilter{
		MitarbeiterID: c.Query("mitarbeiterId"),
		Status:        model.Status(c.Query("status")),
	}
	if f.MitarbeiterID != "" {
		if _, err := uuid.Parse(f.MitarbeiterID); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", "mitarbeiterId must be a UUID")
			return
		}
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(c, http.StatusBadRequest, "invalid_request", "unknown status")
		return
	}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"von", &f.Von}, {"bis", &f.Bis}} {
		v := c.Query(p.key)
		if v == "" {
			continue
		}
		d, err := time.Parse(service.DateLayout, v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request", p.key+" must be YYYY-MM-DD")
			return
		}
		*p.dst = d
	}

	list, err := s.svc.ListKrankmeldungen(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.Views(list))
}

func (s *Server) getKrankmeldung(c *gin.Context) {
	k, err := s.svc.GetKrankmeldung(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ViewOf(*k))
}

func (s *Server) createKrankmeldung(c *gin.Context) {
	var in service.KrankmeldungInput
	if !bindJSON(c, &in) {
		return
	}
	k, err := s.svc.CreateKrankmeldung(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.ViewOf(*k))
}

func (s *Server) updateKrankmeldung(c *gin.Context) {
	var in service.KrankmeldungInput
	if !bindJSON(c, &in) {
		return
	}
	k, err := s.svc.UpdateKrankmeldung(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ViewOf(*k))
}

func (s *Server) deleteKrankmeldung(c *gin.Context) {
	if err := s.svc.DeleteKrankmeldung(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) changeStatus(c *gin.Context) {
	var in service.StatusInput
	if !bindJSON(c, &in) {
		return
	}
	k, err := s.svc.ChangeStatus(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ViewOf(*k))
}

func (s *Server) history(c *gin.Context) {
	log, err := s.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if log == nil {
		log = []model.AenderungsLog{}
	}
	c.JSON(http.StatusOK, log)
}

func (s *Server) listMitarbeiter(c *gin.Context) {
	list, err := s.svc.ListMitarbeiter(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []model.Mitarbeiter{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createMitarbeiter(c *gin.Context) {
	var in service.MitarbeiterInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := s.svc.CreateMitarbeiter(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) updateMitarbeiter(c *gin.Context) {
	var in service.MitarbeiterInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := s.svc.UpdateMitarbeiter(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) listBenutzer(c *gin.Context) {
	list, err := s.svc.ListBenutzer(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []model.Benutzer{}
	}
	c.JSON(http.StatusOK, list)
}
