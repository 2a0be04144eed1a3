// This file is part of Sio800.
//
// Sio800 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Sio800 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Sio800.  If not, see <https://www.gnu.org/licenses/>.

//go:build statsview
// +build statsview

package statsview

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Address of the statistics server.
const Address = "localhost:12800"

const url = "/debug/statsview"

// refresh interval of the graphs in milliseconds
const refresh = 1000

// Launch runs the statistics server alongside the serial bus until the
// context is cancelled.
func Launch(ctx context.Context, output io.Writer) {
	viewer.SetConfiguration(
		viewer.WithAddr(Address),
		viewer.WithInterval(refresh),
	)

	mgr := statsview.New()
	go mgr.Start()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()

	fmt.Fprintf(output, "bus statistics at http://%s%s\n", Address, url)
}

// Available returns true because the statsview build tag is present.
func Available() bool {
	return true
}
