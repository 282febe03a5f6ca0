package workers

import "wa-gateway/domain"

func domainStatus() domain.Status {
	return domain.NewStatus(domain.Uninitialized, nil)
}
