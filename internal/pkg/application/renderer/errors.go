package renderer

type NotFoundError struct {
	msg string
}

func NewNotFoundError(msg string) NotFoundError {
	return NotFoundError{msg: msg}
}

func (nfe NotFoundError) Error() string {
	return nfe.msg
}

type BadRequestDataError struct {
	msg string
}

func NewBadRequestDataError(msg string) BadRequestDataError {
	return BadRequestDataError{msg: msg}
}

func (brd BadRequestDataError) Error() string {
	return brd.msg
}
