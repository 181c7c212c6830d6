// Copyright 2015 The go-DATx Authors
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

package chain

import "errors"

// Error kinds used across handlers. Call sites wrap them with fmt.Errorf's
// %w, so they can be matched with errors.Is; each handler logs at a fixed
// severity for its own call site.
var (
	ErrDecode       = errors.New("chain: malformed payload")
	ErrVerification = errors.New("chain: block verification failed")
	ErrShorterChain = errors.New("chain: incoming chain not strictly longer")
	ErrContractEval = errors.New("chain: contract evaluation failed")
	ErrBlockRef     = errors.New("chain: block reference out of range or wrong kind")
	ErrMinerCancel  = errors.New("chain: mining stopped")
	ErrTransport    = errors.New("chain: transport failure")
)
