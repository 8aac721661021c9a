package api

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/connyay/stockfolio/gains"
)

// CapitalGainsHandler handles
// GET /capital-gains?portfolio=&numsharesgt=&numshareslt=.
func CapitalGainsHandler(engine *gains.Engine, log *logrus.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		query := gains.Query{Portfolio: req.URL.Query().Get("portfolio")}
		var err error
		query.SharesGT, err = intParam(req, "numsharesgt")
		if err != nil {
			writeError(rw, http.StatusBadRequest, kindValidation, "numsharesgt must be an integer")
			return
		}
		query.SharesLT, err = intParam(req, "numshareslt")
		if err != nil {
			writeError(rw, http.StatusBadRequest, kindValidation, "numshareslt must be an integer")
			return
		}
		report, err := engine.Report(req.Context(), query)
		if err != nil {
			log.WithFields(logrus.Fields{
				"err":       err,
				"portfolio": query.Portfolio,
			}).Error("capital gains report failed")
			writeError(rw, http.StatusInternalServerError, kindUpstream, "failed computing capital gains")
			return
		}
		writeJSON(rw, http.StatusOK, report, log)
	}
}

func intParam(req *http.Request, name string) (*int64, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
