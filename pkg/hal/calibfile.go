package hal

import (
	"os"

	pkgerrors "github.com/pkg/errors"
)

// FileCalibrationStore reads the raw calibration image from a file, the
// host stand-in for the EEPROM bytes. An empty path or missing file is a
// normal "nothing stored" condition.
type FileCalibrationStore struct {
	path string
}

func NewFileCalibrationStore(path string) *FileCalibrationStore {
	return &FileCalibrationStore{path: path}
}

func (s *FileCalibrationStore) ReadCalibration() ([]byte, error) {
	if s.path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to read calibration image %s", s.path)
	}
	return b, nil
}
