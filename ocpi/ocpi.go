package ocpi

import (
	"evcdr/entity/cdr"
	"evcdr/internal"
	"evcdr/ocpi/client"
	"fmt"
	"time"
)

const cdrsEndpoint = "/cdrs"

// OCPI sends built CDRs to the eMSP cdrs module
type OCPI struct {
	client *client.Client
	logger internal.LogHandler
}

func New(url, token string) *OCPI {
	return &OCPI{
		client: client.New(url, token),
	}
}

func (o *OCPI) SetLogger(logger internal.LogHandler) {
	o.logger = logger
}

func (o *OCPI) SetRetry(attempts int, backoff time.Duration) {
	o.client.SetRetry(attempts, backoff)
}

// PushCdr posts the record in the background; done receives nil once the eMSP accepted it
func (o *OCPI) PushCdr(record *cdr.Cdr, done func(err error)) {
	o.client.POST(cdrsEndpoint, record, func(body []byte, err error) {
		if err == nil {
			var res *Response
			res, err = ParseResponse(body)
			if err == nil {
				err = res.Err()
			}
		}
		if o.logger != nil {
			if err != nil {
				o.logger.Error(fmt.Sprintf("push cdr %s", record.Id), err)
			} else {
				o.logger.FeatureEvent("ocpi", record.SessionId, fmt.Sprintf("cdr %s accepted", record.Id))
			}
		}
		if done != nil {
			done(err)
		}
	})
}
