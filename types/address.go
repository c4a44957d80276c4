// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the identities and state-access interfaces shared by
// the module runtime, the environment, and the verification caches.
package types

import "github.com/luxfi/ids"

// Address identifies the publisher of a module.
type Address = ids.ShortID

// FrameworkAddress hosts the core framework modules. It is fixed by the
// protocol and never changes across networks.
var FrameworkAddress = Address{19: 0x01}
