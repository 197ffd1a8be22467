package nlsock

import (
	"github.com/m-lab/netlinkx/list"
	"github.com/m-lab/netlinkx/netlink"
)

// Dump sends a dump request and decodes every data message of the reply with
// decode. Records are appended to the returned list in the order the kernel
// sent them. decode may return netlink.ErrSkipMessage for messages it is not
// interested in.
//
// The returned list holds whatever was decoded before an error.
func Dump[T any](s *Socket, m *netlink.Message, decode func(*netlink.Message) (T, error)) (*list.List[T], error) {
	res := list.New[T]()
	m.SetFlags(m.Flags() | netlink.NLM_F_DUMP)
	_, err := s.Execute(m, func(m *netlink.Message) error {
		v, err := decode(m)
		if err != nil {
			return err
		}
		res.PushBack(v)
		return nil
	})
	return res, err
}
