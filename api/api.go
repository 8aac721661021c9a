package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/connyay/stockfolio/holding"
	"github.com/connyay/stockfolio/store"
)

// CreateStockHandler handles POST /stocks.
func CreateStockHandler(db store.Store, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		if !isJSON(req) {
			writeError(rw, http.StatusUnsupportedMediaType, kindValidation, "expected application/json media type")
			return
		}
		defer req.Body.Close()
		payload, err := holding.Decode(req.Body)
		if err != nil {
			writeError(rw, http.StatusBadRequest, kindValidation, err.Error())
			return
		}
		h, err := holding.ParseCreate(payload)
		if err != nil {
			writeError(rw, http.StatusBadRequest, kindValidation, err.Error())
			return
		}
		switch err := db.Insert(h); {
		case errors.Is(err, store.ErrDuplicateSymbol):
			writeError(rw, http.StatusBadRequest, kindConflict, "stock symbol already exists for this portfolio")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err":    err,
				"symbol": h.Symbol,
			}).Error("failed inserting holding")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed storing holding")
			return
		}
		writeJSON(rw, http.StatusCreated, map[string]string{"id": h.ID}, log)
	}
}

// ListStocksHandler handles GET /stocks with optional equality filters as
// query params.
func ListStocksHandler(db store.Store, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		filter, err := store.ParseFilter(req.URL.Query())
		if err != nil {
			writeError(rw, http.StatusUnprocessableEntity, kindValidation, err.Error())
			return
		}
		holdings, err := db.List(filter)
		switch {
		case errors.Is(err, store.ErrNoMatch):
			writeError(rw, http.StatusNotFound, kindNotFound, "no stocks match the given filters")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed listing holdings")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed listing holdings")
			return
		}
		writeJSON(rw, http.StatusOK, holdings, log)
	}
}

// GetStockHandler handles GET /stocks/{id}.
func GetStockHandler(db store.Store, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		h, err := db.Get(chi.URLParam(req, "id"))
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(rw, http.StatusNotFound, kindNotFound, "no such id")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed getting holding")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed getting holding")
			return
		}
		writeJSON(rw, http.StatusOK, h, log)
	}
}

// DeleteStockHandler handles DELETE /stocks/{id}.
func DeleteStockHandler(db store.Store, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		switch err := db.Delete(chi.URLParam(req, "id")); {
		case errors.Is(err, store.ErrNotFound):
			writeError(rw, http.StatusNotFound, kindNotFound, "no such id")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed deleting holding")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed deleting holding")
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

// UpdateStockHandler handles PUT /stocks/{id}. The update is a full replace:
// all six fields must be present, and id and symbol must match the stored
// holding.
func UpdateStockHandler(db store.Store, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		if !isJSON(req) {
			writeError(rw, http.StatusUnsupportedMediaType, kindValidation, "expected application/json media type")
			return
		}
		defer req.Body.Close()
		payload, err := holding.Decode(req.Body)
		if err != nil {
			writeError(rw, http.StatusBadRequest, kindValidation, err.Error())
			return
		}
		id := chi.URLParam(req, "id")
		current, err := db.Get(id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(rw, http.StatusNotFound, kindNotFound, "no such id")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed getting holding")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed getting holding")
			return
		}
		h, err := holding.ParseUpdate(payload, current)
		if err != nil {
			kind := kindValidation
			var verr *holding.ValidationError
			if errors.As(err, &verr) && verr.Kind == holding.KindImmutableField {
				kind = kindConflict
			}
			writeError(rw, http.StatusBadRequest, kind, err.Error())
			return
		}
		switch err := db.Update(id, h); {
		case errors.Is(err, store.ErrNotFound):
			writeError(rw, http.StatusNotFound, kindNotFound, "no such id")
			return
		case err != nil:
			log.WithFields(logrus.Fields{
				"err": err,
			}).Error("failed updating holding")
			writeError(rw, http.StatusInternalServerError, kindStore, "failed updating holding")
			return
		}
		writeJSON(rw, http.StatusOK, map[string]string{"id": id}, log)
	}
}

func isJSON(req *http.Request) bool {
	mt, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
