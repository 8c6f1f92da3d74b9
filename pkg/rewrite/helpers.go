package rewrite

import "errors"

func joinErr(sentinel, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel) {
		return err
	}
	return errors.Join(sentinel, err)
}
