// Copyright 2026 Yurii Khvorost
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch is an HTTP helper built on promiseq. Each call performs
// one round trip as a promise stage wrapping a cancelable task:
// canceling the promise aborts the request, and suspending it pauses
// the response-body transfer mid-stream.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/ikhvorost/promiseq"
)

// Request describes one HTTP round trip.
type Request struct {
	URL    string
	Method string // defaults to GET
	Header http.Header
	Body   io.Reader

	// Client overrides http.DefaultClient.
	Client *http.Client

	// Path, if set, streams the response body to a file instead of
	// memory; Response.Location reports it.
	Path string
}

// Fetch performs a GET of url. Stage options (pool, timeout, retry)
// pass through to the underlying promise.
func Fetch(url string, opts ...promiseq.Option) *promiseq.Promise[*Response] {
	return Do(Request{URL: url}, opts...)
}

// Download performs a GET of url, streaming the response body to a file
// at path. The promise's Suspend pauses the transfer; Resume continues
// it; Cancel aborts it and removes the partial file.
func Download(url, path string, opts ...promiseq.Option) *promiseq.Promise[*Response] {
	return Do(Request{URL: url, Path: path}, opts...)
}

// Upload performs a POST of body to url with the given content type.
func Upload(url, contentType string, body io.Reader, opts ...promiseq.Option) *promiseq.Promise[*Response] {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	return Do(Request{URL: url, Method: http.MethodPost, Header: header, Body: body}, opts...)
}

// Do performs req as a promise whose wrapped task controls the round
// trip's lifecycle.
func Do(req Request, opts ...promiseq.Option) *promiseq.Promise[*Response] {
	return promiseq.NewTask[*Response](func(resolve func(*Response), reject func(error), slot *promiseq.TaskSlot) {
		ctx, cancel := context.WithCancel(context.Background())
		task := newHTTPTask(cancel)
		slot.Set(task)

		method := req.Method
		if method == "" {
			method = http.MethodGet
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, req.Body)
		if err != nil {
			reject(err)
			return
		}
		for k, vs := range req.Header {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}

		client := req.Client
		if client == nil {
			client = http.DefaultClient
		}
		httpResp, err := client.Do(httpReq)
		if err != nil {
			reject(taskErr(ctx, err))
			return
		}
		defer httpResp.Body.Close()

		resp := &Response{
			Status:     httpResp.Status,
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
		}

		if req.Path != "" {
			if err := drainToFile(task, httpResp.Body, req.Path); err != nil {
				os.Remove(req.Path)
				reject(taskErr(ctx, err))
				return
			}
			resp.Location = req.Path
		} else {
			body, err := drain(task, httpResp.Body)
			if err != nil {
				reject(taskErr(ctx, err))
				return
			}
			resp.body = body
		}
		resolve(resp)
	}, opts...)
}

// taskErr maps a round trip aborted by the task's Cancel onto the
// promise's cancellation error.
func taskErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return promiseq.ErrCanceled
	}
	return err
}

func drain(task *httpTask, r io.Reader) ([]byte, error) {
	var out []byte
	buf := make([]byte, 32*1024)
	for {
		if err := task.pause(); err != nil {
			return nil, err
		}
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func drainToFile(task *httpTask, r io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	buf := make([]byte, 32*1024)
	for {
		if err := task.pause(); err != nil {
			f.Close()
			return err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				return werr
			}
		}
		if rerr == io.EOF {
			return f.Close()
		}
		if rerr != nil {
			f.Close()
			return rerr
		}
	}
}
