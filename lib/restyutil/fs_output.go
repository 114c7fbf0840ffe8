package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// FilesystemOutput writes one file per HTTP exchange into a directory,
// wiped on construction. Used for --verbose debugging.
type FilesystemOutput struct {
	directory string
	idcounter *uint64
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	var idcounter uint64
	return FilesystemOutput{directory: dir, idcounter: &idcounter}, nil
}

func (o FilesystemOutput) write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// Attach dumps every exchange on the client to the output directory.
func (o FilesystemOutput) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(o.idcounter, 1)
		o.write(fmt.Sprintf("%03d.txt", id), FormatHttpMessage(res))
		return nil
	})
}
