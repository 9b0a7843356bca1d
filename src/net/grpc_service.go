package net

import (
	"context"

	"github.com/mosaicnetworks/txbench/src/types"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

const (
	// ServiceName is the fully qualified name of the gRPC service.
	ServiceName = "admission_control.AdmissionControl"

	// MethodSubmitTransaction names the transaction submission call.
	MethodSubmitTransaction = "SubmitTransaction"
	// MethodUpdateToLatestLedger names the ledger query call.
	MethodUpdateToLatestLedger = "UpdateToLatestLedger"
)

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func submitTransactionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(types.SubmitTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdmissionControlServer).SubmitTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod(MethodSubmitTransaction),
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdmissionControlServer).SubmitTransaction(ctx, req.(*types.SubmitTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateToLatestLedgerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(types.UpdateToLatestLedgerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdmissionControlServer).UpdateToLatestLedger(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod(MethodUpdateToLatestLedger),
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdmissionControlServer).UpdateToLatestLedger(ctx, req.(*types.UpdateToLatestLedgerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var admissionControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdmissionControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodSubmitTransaction,
			Handler:    submitTransactionHandler,
		},
		{
			MethodName: MethodUpdateToLatestLedger,
			Handler:    updateToLatestLedgerHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admission_control.proto",
}

// RegisterAdmissionControlServer exposes srv on s.
func RegisterAdmissionControlServer(s grpc.ServiceRegistrar, srv AdmissionControlServer) {
	s.RegisterService(&admissionControlServiceDesc, srv)
}

// NewGRPCServer returns a gRPC server that speaks the admission-control codec
// and records a span per call. Extra options are appended.
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ForceServerCodec(Codec()),
	}
	return grpc.NewServer(append(base, opts...)...)
}
