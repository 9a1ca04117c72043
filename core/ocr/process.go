package ocr

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
)

// WorkerArg is the argument that switches the executable into worker mode.
const WorkerArg = "ocr-worker"

// Process is a worker running in a child process. Requests and responses are
// JSON lines on the child's stdin and stdout.
type Process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	enc   *json.Encoder
	dec   *json.Decoder

	exited chan struct{}
	err    error
}

// Command returns a Spawner that starts name with args for every worker.
func Command(name string, args ...string) Spawner {
	return func(i int) (Worker, error) {
		return Start(name, args...)
	}
}

// Self returns a Spawner that re-executes the running binary in worker mode.
func Self() (Spawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "ocr: executable")
	}
	return Command(exe, WorkerArg), nil
}

func Start(name string, args ...string) (*Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "ocr: stdin")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "ocr: stdout")
	}

	err = cmd.Start()
	if err != nil {
		return nil, errors.Wrapf(err, "ocr: start %s", name)
	}

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		enc:    json.NewEncoder(stdin),
		dec:    json.NewDecoder(stdout),
		exited: make(chan struct{}),
	}

	go func() {
		p.err = cmd.Wait()
		close(p.exited)
	}()

	return p, nil
}

// Close asks the child to exit by closing its input and kills it if it has
// not exited within a second.
func (p *Process) Close() error {
	p.stdin.Close()

	select {
	case <-p.exited:
	case <-time.After(time.Second):
		p.kill()
		<-p.exited
	}

	return nil
}

func (p *Process) Recognize(ctx context.Context, r Request) (Result, error) {
	select {
	case <-p.exited:
		return Result{}, errors.Wrapf(ErrCrashed, "exited (%v)", p.err)
	default:
	}

	type reply struct {
		Response
		err error
	}

	// The child may stop reading, so the write is raced against ctx too.
	done := make(chan reply, 1)
	go func() {
		err := p.enc.Encode(r)
		if err != nil {
			done <- reply{err: errors.Wrapf(ErrCrashed, "write (%v)", err)}
			return
		}

		var res Response
		err = p.dec.Decode(&res)
		if err != nil {
			err = errors.Wrapf(ErrCrashed, "read (%v)", err)
		}
		done <- reply{res, err}
	}()

	select {
	case rep := <-done:
		switch {
		case rep.err != nil:
			return Result{}, rep.err
		case rep.ID != r.ID:
			return Result{}, errors.Wrapf(ErrCrashed, "response %d for request %d", rep.ID, r.ID)
		case rep.Error != "":
			return Result{}, errors.Errorf("ocr: %s", rep.Error)
		}
		return rep.Result, nil
	case <-ctx.Done():
		p.kill()
		return Result{}, errors.Wrap(ctx.Err(), "ocr: recognize")
	}
}

func (p *Process) kill() {
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
}

// Serve answers requests read from r with e until r is closed.
func Serve(r io.Reader, w io.Writer, e Engine) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)

	for {
		var req Request
		err := dec.Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "ocr: serve")
		}

		res := Response{ID: req.ID}

		res.Result, err = e.Recognize(req.Image, req.Languages, req.Params)
		if err != nil {
			res.Error = err.Error()
		}

		err = enc.Encode(res)
		if err != nil {
			return errors.Wrap(err, "ocr: serve")
		}
	}
}
