package blocklogv1

import (
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// ProgramError recovers the program error name and code from a status
// returned by LogService. ok is false for other errors.
func ProgramError(err error) (name string, code uint32, ok bool) {
	st, isStatus := status.FromError(err)
	if !isStatus {
		return "", 0, false
	}
	for _, d := range st.Details() {
		info, isInfo := d.(*errdetails.ErrorInfo)
		if !isInfo || info.GetDomain() != ErrorDomain {
			continue
		}
		n, perr := strconv.ParseUint(info.GetMetadata()["code"], 10, 32)
		if perr != nil {
			return "", 0, false
		}
		return info.GetReason(), uint32(n), true
	}
	return "", 0, false
}
