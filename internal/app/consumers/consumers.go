package consumers

import (
	"context"
	"resetme/internal/app/deps"
	dl "resetme/internal/core/domain/logging"
	resetrequested "resetme/internal/rabbitmq/consumers/reset_requested"
)

func initResetRequestedConsumer(deps *deps.Deps) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqResetQueue
	resetRequestedConsumer := resetrequested.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.ResetEmailSender,
	)
	if err = resetRequestedConsumer.Consume(); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }
}

func InitConsumers(deps *deps.Deps) func() {
	shutdownResetRequestedConsumer := initResetRequestedConsumer(deps)

	return func() {
		shutdownResetRequestedConsumer()
	}
}
