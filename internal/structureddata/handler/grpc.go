package handler

import (
	"context"

	"github.com/fekuna/omnipos-structured-data/internal/auth"
	"github.com/fekuna/omnipos-structured-data/internal/logger"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "omnipos.structureddata.v1.StructuredDataService"

// StructuredDataServer serves JSON-LD documents. Requests are
// google.protobuf.Struct objects, responses carry the document text.
type StructuredDataServer interface {
	GetProductJsonLd(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
	GetCategoryJsonLd(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
	SearchJsonLd(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error)
}

var StructuredDataServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StructuredDataServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProductJsonLd", Handler: unaryHandler("GetProductJsonLd", StructuredDataServer.GetProductJsonLd)},
		{MethodName: "GetCategoryJsonLd", Handler: unaryHandler("GetCategoryJsonLd", StructuredDataServer.GetCategoryJsonLd)},
		{MethodName: "SearchJsonLd", Handler: unaryHandler("SearchJsonLd", StructuredDataServer.SearchJsonLd)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/structureddata/v1/structured_data.proto",
}

func RegisterStructuredDataServer(s grpc.ServiceRegistrar, srv StructuredDataServer) {
	s.RegisterService(&StructuredDataServiceDesc, srv)
}

type rpcMethod func(StructuredDataServer, context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)

func unaryHandler(name string, call rpcMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StructuredDataServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + name,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(StructuredDataServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type StructuredDataHandler struct {
	uc              structureddata.UseCase
	defaultCurrency string
	logger          logger.ZapLogger
}

func NewStructuredDataHandler(uc structureddata.UseCase, defaultCurrency string, log logger.ZapLogger) *StructuredDataHandler {
	return &StructuredDataHandler{
		uc:              uc,
		defaultCurrency: defaultCurrency,
		logger:          log.With(zap.String("transport", "grpc")),
	}
}

func (h *StructuredDataHandler) GetProductJsonLd(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, grpcError(errMissingMerchant)
	}

	currency := stringField(req, "currency")
	if currency == "" {
		currency = h.defaultCurrency
	}

	doc, err := h.uc.ProductDocument(ctx, &dto.ProductDocumentInput{
		MerchantID: merchantID,
		ProductID:  stringField(req, "product_id"),
		Currency:   currency,
		StoreID:    optionalString(stringField(req, "store_id")),
	})
	if err != nil {
		h.logError("failed to render product json-ld", err)
		return nil, grpcError(err)
	}
	return wrapperspb.String(doc), nil
}

func (h *StructuredDataHandler) GetCategoryJsonLd(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, grpcError(errMissingMerchant)
	}

	doc, err := h.uc.CategoryDocument(ctx, &dto.CategoryDocumentInput{
		MerchantID: merchantID,
		CategoryID: stringField(req, "category_id"),
		StoreID:    optionalString(stringField(req, "store_id")),
		Page:       intField(req, "page"),
		PageSize:   intField(req, "page_size"),
	})
	if err != nil {
		h.logError("failed to render category json-ld", err)
		return nil, grpcError(err)
	}
	return wrapperspb.String(doc), nil
}

func (h *StructuredDataHandler) SearchJsonLd(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return nil, grpcError(errMissingMerchant)
	}

	doc, err := h.uc.SearchDocument(ctx, &dto.SearchDocumentInput{
		MerchantID: merchantID,
		Query:      stringField(req, "query"),
		StoreID:    optionalString(stringField(req, "store_id")),
		Page:       intField(req, "page"),
		PageSize:   intField(req, "page_size"),
	})
	if err != nil {
		h.logError("failed to render search json-ld", err)
		return nil, grpcError(err)
	}
	return wrapperspb.String(doc), nil
}

// logError logs only failures that are not the caller's fault.
func (h *StructuredDataHandler) logError(msg string, err error) {
	if c := classify(err); c.grpcCode == codes.Internal || c.grpcCode == codes.FailedPrecondition {
		h.logger.Error(msg, zap.Error(err))
	}
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func intField(req *structpb.Struct, name string) int {
	return int(req.GetFields()[name].GetNumberValue())
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
