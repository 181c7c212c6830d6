// Copyright 2016 The go-DATx Authors
// This file is part of the go-DATx library.
//
// The go-DATx library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-DATx library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-DATx library. If not, see <http://www.gnu.org/licenses/>.

package node

import (
	"os"
	"time"
)

// BroadcastInterval is the Broadcast Ticker's hard-coded period.
const BroadcastInterval = 60 * time.Second

// Config carries the node's startup settings. Everything but Name has a
// protocol-fixed default; Name is normally the host name.
type Config struct {
	Name string
}

// DefaultConfig holds reasonable settings a caller can start from and
// override piecemeal.
var DefaultConfig = Config{}

// DefaultName resolves the node's mined_by label from the host name.
// Failure to resolve a host name is a fatal startup condition.
func DefaultName() (string, error) {
	return os.Hostname()
}
