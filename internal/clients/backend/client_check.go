package backend

import "github.com/bobmcallan/tradedesk/internal/interfaces"

var _ interfaces.BackendClient = (*Client)(nil)
