package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/setpoint"
)

const (
	PathConfig  = "/config"
	PathCalib   = "/calib"
	PathRestart = "/restart"

	PathMeasurement = "/measurement.csv"
)

func (impl *controllerImpl) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(PathConfig, impl.handleConfig)
	mux.HandleFunc(PathCalib, impl.handleCalib)
	mux.HandleFunc(PathRestart, impl.handleRestart)
	mux.HandleFunc(PathMeasurement, impl.handleMeasurement)

	return mux
}

func (impl *controllerImpl) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("write response failed")
	}
}

func (impl *controllerImpl) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg := impl.GetConfig()

		impl.writeJSON(w, &cfg)
	case http.MethodPost:
		var cfg setpoint.ControllerConfig

		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			impl.logger.WithFields(l.ErrorField(err)).Error("bad config body")
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		if err := impl.SetConfig(cfg, time.Now()); err != nil {
			impl.logger.WithFields(l.ErrorField(err)).Error("save config failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (impl *controllerImpl) handleCalib(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		impl.writeJSON(w, impl.Calibrations())
	case http.MethodPost:
		var req calibration.Request

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		if err := impl.ApplyCalibration(&req); err != nil {
			impl.logger.WithFields(l.ErrorField(err)).Error("apply calibration failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (impl *controllerImpl) handleRestart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)

		return
	}

	impl.Restart()
}

func (impl *controllerImpl) handleMeasurement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)

		return
	}

	w.Header().Set("Content-Type", "text/csv")

	if err := impl.WriteMeasurementCSV(w); err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("write measurements failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
