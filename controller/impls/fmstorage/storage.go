package fmstorage

import (
	"path/filepath"
	"sync"

	"github.com/sgostarter/i/stg"
	"github.com/sgostarter/libeasygo/stg/fs/rawfs"
	"github.com/sgostarter/libeasygo/stg/mwf"
	"github.com/sgostarter/libsetpoint/calibration"
	"github.com/sgostarter/libsetpoint/controller"
	"github.com/sgostarter/libsetpoint/setpoint"
)

func NewFMStorage(root string, storage stg.FileStorage) controller.Storage {
	return NewFMStorageEx(root, storage, "controller.json", false)
}

func NewFMStorageEx(root string, storage stg.FileStorage, fileName string, prettySerial bool) controller.Storage {
	if storage == nil {
		storage = rawfs.NewFSStorage("")
	}

	return &fmStorageImpl{
		d: mwf.NewMemWithFile[storageD, mwf.Serial, mwf.Lock](storageD{}, &mwf.JSONSerial{
			MarshalIndent: prettySerial,
		}, &sync.RWMutex{}, filepath.Join(root, fileName), storage),
	}
}

type storageD struct {
	Config       *setpoint.ControllerConfig    `json:"config,omitempty"`
	Calibrations map[string]calibration.Linear `json:"calibrations,omitempty"`
	Blocks       []controller.Block            `json:"blocks,omitempty"`
}

type fmStorageImpl struct {
	d *mwf.MemWithFile[storageD, mwf.Serial, mwf.Lock]
}

func (impl *fmStorageImpl) LoadConfig() (cfg *setpoint.ControllerConfig, exists bool, err error) {
	impl.d.Read(func(d storageD) {
		if d.Config == nil {
			return
		}

		c := *d.Config
		cfg = &c
		exists = true
	})

	return
}

func (impl *fmStorageImpl) SaveConfig(cfg *setpoint.ControllerConfig) error {
	c := *cfg

	return impl.d.Change(func(oldD storageD) (storageD, error) {
		oldD.Config = &c

		return oldD, nil
	})
}

func (impl *fmStorageImpl) LoadCalibration(name string) (c calibration.Linear, exists bool, err error) {
	impl.d.Read(func(d storageD) {
		c, exists = d.Calibrations[name]
	})

	return
}

func (impl *fmStorageImpl) SaveCalibration(name string, c calibration.Linear) error {
	return impl.d.Change(func(oldD storageD) (storageD, error) {
		calibrations := make(map[string]calibration.Linear, len(oldD.Calibrations)+1)

		for k, v := range oldD.Calibrations {
			calibrations[k] = v
		}

		calibrations[name] = c
		oldD.Calibrations = calibrations

		return oldD, nil
	})
}

func (impl *fmStorageImpl) AppendBlock(b *controller.Block) error {
	return impl.d.Change(func(oldD storageD) (storageD, error) {
		blocks := make([]controller.Block, 0, len(oldD.Blocks)+1)
		blocks = append(blocks, oldD.Blocks...)
		blocks = append(blocks, *b)
		oldD.Blocks = blocks

		return oldD, nil
	})
}

func (impl *fmStorageImpl) LoadBlocks() (blocks []controller.Block, err error) {
	impl.d.Read(func(d storageD) {
		blocks = make([]controller.Block, len(d.Blocks))
		copy(blocks, d.Blocks)
	})

	return
}
