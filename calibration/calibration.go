package calibration

import (
	"sync"
)

// Linear is a two-point calibration: raw x0 reads as y0 and raw x1 reads as y1.
type Linear struct {
	X0 float64 `json:"x0" yaml:"x0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y0 float64 `json:"y0" yaml:"y0"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

func DefaultLinear() Linear {
	return Linear{X0: 0, X1: 1, Y0: 0, Y1: 1}
}

func (c Linear) Predict(x float64) float64 {
	if c.X1 == c.X0 {
		return c.Y0
	}

	return c.Y0 + (x-c.X0)*(c.Y1-c.Y0)/(c.X1-c.X0)
}

// Request is the body of POST /calib: y[i] retargets the current reading of sensor i, save[i] persists it.
type Request struct {
	Save [2]bool     `json:"save"`
	Y    [2]*float64 `json:"y"`
}

type Reader interface {
	Read() (float64, error)
}

type Storage interface {
	LoadCalibration(name string) (c Linear, exists bool, err error)
	SaveCalibration(name string, c Linear) error
}

type Sensor struct {
	lock sync.Mutex

	name        string
	reader      Reader
	storage     Storage
	calibration Linear
}

func NewSensor(name string, reader Reader, storage Storage) *Sensor {
	return &Sensor{
		name:        name,
		reader:      reader,
		storage:     storage,
		calibration: DefaultLinear(),
	}
}

func (s *Sensor) Name() string {
	return s.name
}

func (s *Sensor) Calibration() Linear {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.calibration
}

func (s *Sensor) Read() (float64, error) {
	x, err := s.reader.Read()
	if err != nil {
		return 0, err
	}

	return s.Calibration().Predict(x), nil
}

// Tare pins the current raw reading to y. y == 0 replaces the first calibration point, anything else the second.
func (s *Sensor) Tare(y float64) error {
	x, err := s.reader.Read()
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if y == 0 {
		s.calibration.X0 = x
		s.calibration.Y0 = y
	} else {
		s.calibration.X1 = x
		s.calibration.Y1 = y
	}

	return nil
}

func (s *Sensor) Save() error {
	if s.storage == nil {
		return ErrNoStorage
	}

	c := s.Calibration()

	saved, exists, err := s.storage.LoadCalibration(s.name)
	if err == nil && exists && saved == c {
		return nil
	}

	return s.storage.SaveCalibration(s.name, c)
}

// Load replaces the in-memory calibration with the stored one, or the default when nothing is stored.
func (s *Sensor) Load() (found bool, err error) {
	if s.storage == nil {
		return false, ErrNoStorage
	}

	c, found, err := s.storage.LoadCalibration(s.name)
	if err != nil {
		return
	}

	if !found {
		c = DefaultLinear()
	}

	s.lock.Lock()
	s.calibration = c
	s.lock.Unlock()

	return
}

func (req *Request) Apply(sensors []*Sensor) error {
	for idx, sensor := range sensors {
		if idx >= len(req.Save) {
			break
		}

		if req.Y[idx] != nil {
			if err := sensor.Tare(*req.Y[idx]); err != nil {
				return err
			}
		}

		if req.Save[idx] {
			if err := sensor.Save(); err != nil {
				return err
			}
		}
	}

	return nil
}
